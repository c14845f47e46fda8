package school

import "strings"

// Merge-on-read key: the record id when present, else a structural
// signature over the record's significant fields. Two id-less records
// with the same signature are considered the same record. A record that
// later acquires an id will only shadow its id-less twin if the remote
// echoes identical content; that window is accepted (the stores
// reconcile on the next synced write).

func signature(parts ...string) string {
	return strings.ToLower(strings.Join(parts, "|"))
}

func studentKey(s Student) string {
	if s.ID != "" {
		return s.ID
	}
	return signature("student", s.RegistrationNumber, s.Name, s.BirthDate)
}

func adaptationKey(a Adaptation) string {
	if a.ID != "" {
		return a.ID
	}
	return signature("adaptation", a.StudentID, a.Date, a.Description)
}

func reportKey(r Report) string {
	if r.ID != "" {
		return r.ID
	}
	return signature("report", r.StudentID, r.TeacherID, r.Date, r.Subject)
}

// mergeStudents combines both sets into one, de-duplicating by key.
// Later entries (the local set) overwrite earlier ones (the remote set)
// in place, so the merge result is stable across runs.
func mergeStudents(remote, local []Student) []Student {
	merged := make([]Student, 0, len(remote)+len(local))
	index := make(map[string]int, len(remote)+len(local))
	for _, set := range [][]Student{remote, local} {
		for _, st := range set {
			key := studentKey(st)
			if at, ok := index[key]; ok {
				merged[at] = st
				continue
			}
			index[key] = len(merged)
			merged = append(merged, st)
		}
	}
	return merged
}

func mergeAdaptations(remote, local []Adaptation) []Adaptation {
	merged := make([]Adaptation, 0, len(remote)+len(local))
	index := make(map[string]int, len(remote)+len(local))
	for _, set := range [][]Adaptation{remote, local} {
		for _, ad := range set {
			key := adaptationKey(ad)
			if at, ok := index[key]; ok {
				merged[at] = ad
				continue
			}
			index[key] = len(merged)
			merged = append(merged, ad)
		}
	}
	return merged
}

func mergeReports(remote, local []Report) []Report {
	merged := make([]Report, 0, len(remote)+len(local))
	index := make(map[string]int, len(remote)+len(local))
	for _, set := range [][]Report{remote, local} {
		for _, rp := range set {
			key := reportKey(rp)
			if at, ok := index[key]; ok {
				merged[at] = rp
				continue
			}
			index[key] = len(merged)
			merged = append(merged, rp)
		}
	}
	return merged
}
