// Package export implements the export traversal engine: the sequential
// walk of a Schoology account that mirrors school info, activity updates,
// messages, user profiles and every course's content tree into one export
// run directory.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"sgyexport/pkg/config"
	"sgyexport/pkg/logger"
	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// Exporter drives one export run. The whole traversal is a single
// sequential chain of fetches and writes; the user dedup set is threaded
// by value through every call site, which is what makes "each user exported
// at most once" hold without any locking.
type Exporter struct {
	client   *schoology.Client
	run      *storage.Run
	pageSize int
	logger   logger.Logger
}

// New creates an exporter writing into the given run directory.
func New(client *schoology.Client, run *storage.Run, cfg *config.Config, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}
	pageSize := schoology.DefaultPageSize
	if cfg != nil && cfg.Schoology.PageSize > 0 {
		pageSize = cfg.Schoology.PageSize
	}
	return &Exporter{
		client:   client,
		run:      run,
		pageSize: pageSize,
		logger:   log,
	}
}

// Run executes the full export: authenticated user, school and building,
// activity updates, messages, and every course. The first failure anywhere
// aborts the run; partial exports are not a supported mode.
func (e *Exporter) Run(ctx context.Context) error {
	start := time.Now()

	selfInfo, err := e.client.GetNode(ctx, schoology.AppUserInfoURL())
	if err != nil {
		return errors.Wrap(err, "failed to request uid")
	}
	uid, err := selfInfo.Int("api_uid", "app user info")
	if err != nil {
		return errors.Wrap(err, "failed to get uid")
	}

	e.logger.InfoWithFields("logged in", map[string]interface{}{"uid": uid})

	if err := storage.WriteFile(e.run.Path("users", "self"), []byte(fmt.Sprintf("%d", uid))); err != nil {
		return err
	}

	users := NewUserSet()
	userInfo, err := e.exportUser(ctx, uid)
	if err != nil {
		return err
	}
	users = users.Add(uid)

	schoolID, err := userInfo.Int("school_id", "user info")
	if err != nil {
		return errors.Wrap(err, "failed to get school id")
	}
	if err := e.exportSchool(ctx, e.run.Path("school"), schoolID); err != nil {
		return err
	}

	buildingID, err := userInfo.Int("building_id", "user info")
	if err != nil {
		return errors.Wrap(err, "failed to get building id")
	}
	if err := e.exportSchool(ctx, e.run.Path("building"), buildingID); err != nil {
		return err
	}

	users, err = e.exportUpdates(ctx, users)
	if err != nil {
		return err
	}

	users, err = e.exportMessages(ctx, users)
	if err != nil {
		return err
	}

	if err := e.exportCourses(ctx, uid); err != nil {
		return err
	}

	e.logger.InfoWithFields("export completed", map[string]interface{}{
		"duration":       time.Since(start),
		"users_exported": users.Len(),
	})

	return nil
}
