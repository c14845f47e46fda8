package school

import (
	"github.com/go-playground/validator/v10"

	"github.com/incluso/backend/core"
)

var (
	reportResultTag  = "reportresult"
	reportResultText = "result must be one of: positivo, neutro, negativo"
)

func init() {
	_ = core.Validate.RegisterValidation(reportResultTag, reportResultValidation)
	core.RegisterCustomTranslation(reportResultTag, reportResultText)
}

// reportResultValidation checks that the provided result is in AllResults
func reportResultValidation(fl validator.FieldLevel) bool {
	result, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, r := range AllResults {
		if r == result {
			return true
		}
	}
	return false
}
