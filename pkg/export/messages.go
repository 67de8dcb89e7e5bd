package export

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// exportMessages walks the inbox feed and then the sent feed with one
// shared page counter, so messages_<n>.json files number the pages of both
// boxes consecutively. Each message's full record is fetched through its
// links.self URL and written as message_<id>.json; its attachments are
// named message_<id>_<filename>. A message without an author_id (system
// notifications) is tolerated.
func (e *Exporter) exportMessages(ctx context.Context, users UserSet) (UserSet, error) {
	pageNum := 0

	for _, box := range []string{"inbox", "sent"} {
		pager := schoology.NewPager(e.client, schoology.MessagesURL(box, e.pageSize))

		for pager.HasNext() {
			e.logger.InfoWithFields("exporting messages", map[string]interface{}{
				"box":  box,
				"page": pageNum,
			})

			page, err := pager.Next(ctx)
			if err != nil {
				return users, errors.Wrap(err, "failed to request messages info")
			}

			messages, err := page.Nodes("message", "messages feed page")
			if err != nil {
				return users, errors.Wrap(err, "failed to get messages info")
			}

			for _, message := range messages {
				messageID, err := message.Int("id", "message")
				if err != nil {
					return users, errors.Wrap(err, "failed to get message id")
				}

				messageURL, err := message.SelfLink("message")
				if err != nil {
					return users, errors.Wrap(err, "failed to get message url")
				}

				messageInfo, err := e.client.GetNode(ctx, messageURL)
				if err != nil {
					return users, errors.Wrap(err, "failed to request message info")
				}

				if err := storage.WriteJSON(e.run.Path("messages", fmt.Sprintf("message_%d.json", messageID)), messageInfo); err != nil {
					return users, err
				}

				if err := e.exportAttachments(ctx, message, func(filename string) string {
					return e.run.Path("messages", fmt.Sprintf("message_%d_%s", messageID, filename))
				}); err != nil {
					return users, err
				}

				if authorID, ok := message.OptionalInt("author_id"); ok {
					users, err = e.EnsureUserExported(ctx, users, authorID)
					if err != nil {
						return users, err
					}
				}
			}

			if err := storage.WriteJSON(e.run.Path("messages", fmt.Sprintf("messages_%d.json", pageNum)), page); err != nil {
				return users, err
			}
			pageNum++
		}
	}

	return users, nil
}
