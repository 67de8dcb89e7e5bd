package schoology

import (
	"fmt"
	"strings"
)

const (
	// BaseURL is the base URL for the Schoology REST API
	BaseURL = "https://api.schoology.com/v1"

	// DetailSuffix asks a content endpoint to inline attachments and
	// richtext bodies
	DetailSuffix = "?with_attachments=TRUE&richtext=1"

	// DefaultPageSize is the page size used for feed endpoints
	DefaultPageSize = 50
)

// APIURL builds an absolute API URL from a path relative to the API root.
func APIURL(path string) string {
	return fmt.Sprintf("%s/%s", BaseURL, strings.TrimPrefix(path, "/"))
}

// AppUserInfoURL resolves the authenticated user.
func AppUserInfoURL() string {
	return APIURL("app-user-info")
}

// UserURL fetches one user's profile.
func UserURL(userID int64) string {
	return APIURL(fmt.Sprintf("users/%d", userID))
}

// SchoolURL fetches a school or building record.
func SchoolURL(schoolID int64) string {
	return APIURL(fmt.Sprintf("schools/%d", schoolID))
}

// SectionsURL lists the course sections a user is enrolled in, past included.
func SectionsURL(userID int64) string {
	return APIURL(fmt.Sprintf("users/%d/sections?include_past=1", userID))
}

// SectionGradesURL fetches a user's grades within one course section.
func SectionGradesURL(userID int64, sectionID string) string {
	return APIURL(fmt.Sprintf("users/%d/grades/?section_id=%s", userID, sectionID))
}

// CourseFolderRootURL is the root file folder of a course (folder id 0).
func CourseFolderRootURL(sectionID string) string {
	return APIURL(fmt.Sprintf("courses/%s/folder/0", sectionID))
}

// RecentFeedURL is the first page of the activity updates feed. Subsequent
// pages come exclusively from links.next.
func RecentFeedURL(limit int) string {
	return APIURL(fmt.Sprintf("recent/?extended&options&start=0&limit=%d&created_offset=0&with_attachments=TRUE&richtext=1", limit))
}

// MessagesURL is the first page of a message box feed ("inbox" or "sent").
func MessagesURL(box string, limit int) string {
	return APIURL(fmt.Sprintf("messages/%s?extended&options&start=0&limit=%d&created_offset=0&with_attachments=TRUE&richtext=1", box, limit))
}

// DetailURL appends the attachment/richtext suffix to an item's location.
func DetailURL(location string) string {
	return location + DetailSuffix
}

// SubmissionsURL derives the submissions endpoint from an assignment
// location by path substitution, asking for every revision.
func SubmissionsURL(assignmentLocation string) string {
	return strings.Replace(assignmentLocation, "assignments", "submissions", 1) +
		"?with_attachments=TRUE&all_revisions=TRUE"
}

// GradeURL derives the grade endpoint from an assignment location by path
// substitution.
func GradeURL(assignmentLocation string) string {
	return strings.Replace(assignmentLocation, "assignments/", "grades?assignment_id=", 1)
}
