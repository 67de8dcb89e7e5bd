package export

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// exportSchool mirrors a school or building record: its JSON info plus its
// picture. The same shape serves both the school and building categories,
// which only differ by id.
func (e *Exporter) exportSchool(ctx context.Context, dir string, schoolID int64) error {
	e.logger.InfoWithFields("exporting school", map[string]interface{}{"school_id": schoolID})

	info, err := e.client.GetNode(ctx, schoology.SchoolURL(schoolID))
	if err != nil {
		return errors.Wrap(err, "failed to request school info")
	}

	if err := storage.WriteJSON(filepath.Join(dir, "info.json"), info); err != nil {
		return err
	}

	pictureURL, err := info.String("picture_url", "school info")
	if err != nil {
		return errors.Wrap(err, "failed to get school/building picture url")
	}

	picture, err := e.client.GetBytes(ctx, pictureURL)
	if err != nil {
		return errors.Wrap(err, "failed to request school/building picture")
	}

	if err := storage.WriteFile(filepath.Join(dir, "picture.png"), picture); err != nil {
		return errors.Wrap(err, "failed to save school/building picture")
	}

	return nil
}
