package commentservice

import "github.com/riverfold/inkpress/internal/common"

func validateComment(v *common.Validator, req *CreateCommentRequest) {
	v.Check(req.Slug != "", "slug", "must be provided")
	v.Check(req.Body != "", "body", "must be provided")
	v.Check(v.CheckStringLength(req.Body, 1, 2000), "body", "must be at most 2000 characters long")
	v.Check(v.CheckStringLength(req.Author, 0, 100), "author", "must be at most 100 characters long")
}
