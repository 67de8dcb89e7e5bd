package export

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"

	errs "sgyexport/pkg/errors"
	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// ItemType is the closed set of folder item kinds the content tree walk
// understands. Anything else is a protocol violation that aborts the whole
// traversal rather than producing a silently incomplete export.
type ItemType int

const (
	ItemFolder ItemType = iota
	ItemPage
	ItemDocument
	ItemAssignment
)

// parseItemType maps the wire type discriminator onto the closed item set.
func parseItemType(s string) (ItemType, bool) {
	switch s {
	case "folder":
		return ItemFolder, true
	case "page":
		return ItemPage, true
	case "document":
		return ItemDocument, true
	case "assignment":
		return ItemAssignment, true
	default:
		return 0, false
	}
}

// exportContentTree recursively mirrors a folder node into dest. Items are
// processed strictly left to right; the first failure anywhere in the
// subtree aborts the walk. A node without a folder-item array is a leaf
// folder and yields just its directory.
func (e *Exporter) exportContentTree(ctx context.Context, dest string, folder schoology.Node) error {
	if err := storage.EnsureDir(dest); err != nil {
		return err
	}

	items, ok := folder.OptionalNodes("folder-item")
	if !ok {
		return nil
	}

	for _, item := range items {
		typeStr, err := item.String("type", "folder item")
		if err != nil {
			return errors.Wrap(err, "failed to get folder item type")
		}
		title, err := item.String("title", "folder item")
		if err != nil {
			return errors.Wrap(err, "failed to get folder item title")
		}
		location, err := item.String("location", "folder item")
		if err != nil {
			return errors.Wrap(err, "failed to get folder item location")
		}

		itemDir := filepath.Join(dest, storage.Sanitize(title))

		itemType, known := parseItemType(typeStr)
		if !known {
			e.logger.ErrorWithFields("unrecognized folder item", map[string]interface{}{
				"type":  typeStr,
				"title": title,
				"item":  fmt.Sprintf("%v", item),
			})
			return errs.NewProtocol(fmt.Sprintf("unrecognized folder item type %q", typeStr))
		}

		e.logger.DebugWithFields("exporting folder item", map[string]interface{}{
			"type":  typeStr,
			"title": title,
		})

		switch itemType {
		case ItemFolder:
			subFolder, err := e.client.GetNode(ctx, location)
			if err != nil {
				return errors.Wrap(err, "failed to request folder")
			}
			if err := e.exportContentTree(ctx, itemDir, subFolder); err != nil {
				return err
			}

		case ItemPage:
			if err := e.exportPage(ctx, itemDir, location); err != nil {
				return err
			}

		case ItemDocument:
			if err := e.exportDocument(ctx, itemDir, location); err != nil {
				return err
			}

		case ItemAssignment:
			if err := e.exportAssignment(ctx, itemDir, location); err != nil {
				return err
			}
		}
	}

	return nil
}

// exportPage writes a page's HTML body plus its attachments.
func (e *Exporter) exportPage(ctx context.Context, dir, location string) error {
	page, err := e.client.GetNode(ctx, schoology.DetailURL(location))
	if err != nil {
		return errors.Wrap(err, "failed to request page")
	}

	if err := storage.EnsureDir(dir); err != nil {
		return err
	}

	body, err := page.String("body", "page")
	if err != nil {
		return errors.Wrap(err, "failed to get page body")
	}
	if err := storage.WriteFile(filepath.Join(dir, "page.html"), []byte(body)); err != nil {
		return err
	}

	return e.exportAttachments(ctx, page, func(filename string) string {
		return filepath.Join(dir, "attachment_"+filename)
	})
}

// exportDocument writes a document's full record plus its attachments.
func (e *Exporter) exportDocument(ctx context.Context, dir, location string) error {
	document, err := e.client.GetNode(ctx, schoology.DetailURL(location))
	if err != nil {
		return errors.Wrap(err, "failed to request document")
	}

	if err := storage.EnsureDir(dir); err != nil {
		return err
	}

	if err := storage.WriteJSON(filepath.Join(dir, "document.json"), document); err != nil {
		return err
	}

	return e.exportAttachments(ctx, document, func(filename string) string {
		return filepath.Join(dir, "attachment_"+filename)
	})
}

// exportAssignment writes the assignment record, then every submission
// revision into its own revision_<id> subdirectory, then the grade record.
// The three sub-steps are always sequential and any failure aborts the
// whole assignment export.
func (e *Exporter) exportAssignment(ctx context.Context, dir, location string) error {
	assignment, err := e.client.GetNode(ctx, schoology.DetailURL(location))
	if err != nil {
		return errors.Wrap(err, "failed to request assignment")
	}

	if err := storage.EnsureDir(dir); err != nil {
		return err
	}

	if err := storage.WriteJSON(filepath.Join(dir, "assignment.json"), assignment); err != nil {
		return err
	}

	submissions, err := e.client.GetNode(ctx, schoology.SubmissionsURL(location))
	if err != nil {
		return errors.Wrap(err, "failed to request assignment submissions")
	}

	revisions, err := submissions.Nodes("revision", "assignment submissions")
	if err != nil {
		return errors.Wrap(err, "failed to get submission revisions")
	}

	for _, revision := range revisions {
		revisionID, err := revision.Int("revision_id", "submission revision")
		if err != nil {
			return errors.Wrap(err, "failed to get revision id")
		}

		revisionDir := filepath.Join(dir, fmt.Sprintf("revision_%d", revisionID))
		if err := storage.EnsureDir(revisionDir); err != nil {
			return err
		}

		if err := storage.WriteJSON(filepath.Join(revisionDir, "revision.json"), revision); err != nil {
			return err
		}

		// Each revision has its own subdirectory, so attachment names
		// need no prefix here.
		if err := e.exportAttachments(ctx, revision, func(filename string) string {
			return filepath.Join(revisionDir, filename)
		}); err != nil {
			return err
		}
	}

	grade, err := e.client.GetNode(ctx, schoology.GradeURL(location))
	if err != nil {
		return errors.Wrap(err, "failed to request assignment grade")
	}

	return storage.WriteJSON(filepath.Join(dir, "grade.json"), grade)
}
