package export

import (
	"context"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// PathFunc maps a sanitized attachment filename to its destination path.
type PathFunc func(filename string) string

// exportAttachments downloads every file attachment referenced by a record.
// A record without an attachments.files.file array simply has no
// attachments; that is not an error. The first failed download aborts the
// remaining attachments of the record.
func (e *Exporter) exportAttachments(ctx context.Context, record schoology.Node, pathFn PathFunc) error {
	attachments, err := record.Node("attachments", "")
	if err != nil {
		return nil
	}
	files, err := attachments.Node("files", "")
	if err != nil {
		return nil
	}
	entries, ok := files.OptionalNodes("file")
	if !ok {
		return nil
	}

	for _, entry := range entries {
		downloadURL, err := entry.String("download_path", "file attachment")
		if err != nil {
			return errors.Wrap(err, "failed to get file attachment download path")
		}
		filename, err := entry.String("filename", "file attachment")
		if err != nil {
			return errors.Wrap(err, "failed to get file attachment name")
		}

		data, err := e.client.GetBytes(ctx, downloadURL)
		if err != nil {
			return errors.Wrap(err, "failed to request file attachment")
		}

		if err := storage.WriteFile(pathFn(storage.Sanitize(filename)), data); err != nil {
			return errors.Wrap(err, "failed to save file attachment")
		}
	}

	return nil
}
