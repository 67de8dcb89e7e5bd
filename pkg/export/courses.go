package export

import (
	"context"

	"github.com/pkg/errors"

	"sgyexport/pkg/schoology"
	"sgyexport/pkg/storage"
)

// exportCourses mirrors every course section the user is or was enrolled
// in: the section listing itself, then per course its info record, banner
// image, grade report, and the full content tree rooted at folder 0.
func (e *Exporter) exportCourses(ctx context.Context, uid int64) error {
	courses, err := e.client.GetNode(ctx, schoology.SectionsURL(uid))
	if err != nil {
		return errors.Wrap(err, "failed to request courses")
	}

	if err := storage.WriteJSON(e.run.Path("courses", "info.json"), courses); err != nil {
		return err
	}

	sections, err := courses.Nodes("section", "course sections")
	if err != nil {
		return errors.Wrap(err, "failed to get courses")
	}

	for _, section := range sections {
		// Section ids arrive as strings on this endpoint.
		courseID, err := section.String("id", "course section")
		if err != nil {
			return errors.Wrap(err, "failed to get course id")
		}

		courseDir := e.run.Path("courses", courseID)
		if err := storage.EnsureDir(courseDir); err != nil {
			return err
		}

		e.logger.InfoWithFields("exporting course", map[string]interface{}{"course_id": courseID})

		infoURL, err := section.SelfLink("course section")
		if err != nil {
			return errors.Wrap(err, "failed to get course url")
		}

		courseInfo, err := e.client.GetNode(ctx, infoURL)
		if err != nil {
			return errors.Wrap(err, "failed to get course info")
		}
		if err := storage.WriteJSON(e.run.Path("courses", courseID, "info.json"), courseInfo); err != nil {
			return err
		}

		bannerURL, err := courseInfo.String("profile_url", "course info")
		if err != nil {
			return errors.Wrap(err, "failed to get course banner url")
		}
		banner, err := e.client.GetBytes(ctx, bannerURL)
		if err != nil {
			return errors.Wrap(err, "failed to request course banner")
		}
		if err := storage.WriteFile(e.run.Path("courses", courseID, "banner.png"), banner); err != nil {
			return err
		}

		grades, err := e.client.GetNode(ctx, schoology.SectionGradesURL(uid, courseID))
		if err != nil {
			return errors.Wrap(err, "failed to get course grades")
		}
		if err := storage.WriteJSON(e.run.Path("courses", courseID, "grades.json"), grades); err != nil {
			return err
		}

		rootFolder, err := e.client.GetNode(ctx, schoology.CourseFolderRootURL(courseID))
		if err != nil {
			return errors.Wrap(err, "failed to request course files")
		}

		if err := e.exportContentTree(ctx, e.run.Path("courses", courseID, "files"), rootFolder); err != nil {
			return errors.Wrap(err, "failed to export course files")
		}
	}

	return nil
}
