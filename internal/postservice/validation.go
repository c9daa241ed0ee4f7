package postservice

import (
	"regexp"

	"github.com/riverfold/inkpress/internal/common"
)

var slugRx = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func validateSave(v *common.Validator, req *SavePostRequest) {
	v.Check(req.Slug != "", "slug", "must be provided")
	v.Check(slugRx.MatchString(req.Slug), "slug", "must be lowercase letters, digits and hyphens")
	v.Check(req.Title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(req.Title, 1, 200), "title", "must be at most 200 characters long")
	v.Check(req.Content != "", "content", "must be provided")
	v.Check(req.Status == StatusDraft || req.Status == StatusPublished, "status", "must be draft or published")
}
