package pages

import "reportprint/interfaces/web/presenters"

// itemResult is the result column: the outcome, plus the error when there is one.
func itemResult(item presenters.RunItemView) string {
	if item.Error != "" {
		return item.Result + ": " + item.Error
	}
	return item.Result
}
