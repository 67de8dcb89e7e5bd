package export

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// UserSet is the accumulating collection of user identifiers already
// exported in the current run. It only grows; callers must pass the current
// set into EnsureUserExported and carry the returned set forward. The
// traversal is strictly sequential, so no synchronization is needed.
type UserSet map[int64]struct{}

// NewUserSet returns an empty user set.
func NewUserSet() UserSet {
	return make(UserSet)
}

// Contains reports whether a user id is in the set.
func (s UserSet) Contains(userID int64) bool {
	_, ok := s[userID]
	return ok
}

// Add returns the set with the user id included.
func (s UserSet) Add(userID int64) UserSet {
	s[userID] = struct{}{}
	return s
}

// Len returns the number of users in the set.
func (s UserSet) Len() int {
	return len(s)
}

// EnsureUserExported exports a user's profile and picture exactly once per
// run. When the id is already in the set this is a no-op; otherwise the
// profile is written under users/<id>/ and the returned set includes the id.
func (e *Exporter) EnsureUserExported(ctx context.Context, users UserSet, userID int64) (UserSet, error) {
	if users.Contains(userID) {
		return users, nil
	}

	if _, err := e.exportUser(ctx, userID); err != nil {
		return users, errors.Wrap(err, "failed to export user")
	}

	return users.Add(userID), nil
}

// exportUser writes one user's profile JSON and picture into a fresh
// per-user directory and returns the fetched profile record.
func (e *Exporter) exportUser(ctx context.Context, userID int64) (schoology.Node, error) {
	dir := e.run.Path("users", fmt.Sprintf("%d", userID))
	if err := storage.EnsureDir(dir); err != nil {
		return nil, errors.Wrap(err, "failed to create user export dir")
	}

	e.logger.DebugWithFields("exporting user", map[string]interface{}{"user_id": userID})

	userInfo, err := e.client.GetNode(ctx, schoology.UserURL(userID))
	if err != nil {
		return nil, errors.Wrap(err, "failed to request user info")
	}

	if err := storage.WriteJSON(e.run.Path("users", fmt.Sprintf("%d", userID), "user_info.json"), userInfo); err != nil {
		return nil, err
	}

	pictureURL, err := userInfo.String("picture_url", "user info")
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user picture url")
	}

	picture, err := e.client.GetBytes(ctx, pictureURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to request user picture")
	}

	if err := storage.WriteFile(e.run.Path("users", fmt.Sprintf("%d", userID), "user_image.png"), picture); err != nil {
		return nil, errors.Wrap(err, "failed to save user picture")
	}

	return userInfo, nil
}
