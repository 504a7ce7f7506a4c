package models

type Permission string

const (
	ViewPermission   Permission = "VIEW"
	SubmitPermission Permission = "SUBMIT"
	ReviewPermission Permission = "REVIEW"
	ExportPermission Permission = "EXPORT"
)
