package main

// seed populates the local record store with the default dataset.
// Safe to run repeatedly.
func (cli *commandLine) seed() error {
	return cli.db.EnsureSeed()
}
