package export

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// exportUpdates walks the activity updates feed page by page. Every page is
// persisted verbatim as updates_<n>.json; update authors and comment
// authors are exported through the dedup set, and update attachments land
// next to the pages as update_<id>_<filename>.
func (e *Exporter) exportUpdates(ctx context.Context, users UserSet) (UserSet, error) {
	pager := schoology.NewPager(e.client, schoology.RecentFeedURL(e.pageSize))

	pageNum := 0
	for pager.HasNext() {
		e.logger.InfoWithFields("exporting updates", map[string]interface{}{"page": pageNum})

		page, err := pager.Next(ctx)
		if err != nil {
			return users, errors.Wrap(err, "failed to request update info")
		}

		updates, err := page.Nodes("update", "update feed page")
		if err != nil {
			return users, errors.Wrap(err, "failed to get update info")
		}

		for _, update := range updates {
			updateID, err := update.Int("id", "update")
			if err != nil {
				return users, errors.Wrap(err, "failed to get update id")
			}

			authorID, err := update.Int("uid", "update")
			if err != nil {
				return users, errors.Wrap(err, "failed to get update user id")
			}
			users, err = e.EnsureUserExported(ctx, users, authorID)
			if err != nil {
				return users, err
			}

			comments, err := update.Nodes("comments", "update")
			if err != nil {
				return users, errors.Wrap(err, "failed to get update comments")
			}
			for _, comment := range comments {
				commentAuthorID, err := comment.Int("uid", "update comment")
				if err != nil {
					return users, errors.Wrap(err, "failed to get update comment user id")
				}
				users, err = e.EnsureUserExported(ctx, users, commentAuthorID)
				if err != nil {
					return users, err
				}
			}

			if err := e.exportAttachments(ctx, update, func(filename string) string {
				return e.run.Path("updates", fmt.Sprintf("update_%d_%s", updateID, filename))
			}); err != nil {
				return users, err
			}
		}

		if err := storage.WriteJSON(e.run.Path("updates", fmt.Sprintf("updates_%d.json", pageNum)), page); err != nil {
			return users, err
		}
		pageNum++
	}

	return users, nil
}
