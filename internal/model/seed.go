package model

import (
	"context"

	"memberhub/internal/entity"
)

// SeedLaunchAnnouncements 在公告表为空时写入上线公告，重复启动不会重复插入。
func SeedLaunchAnnouncements(ctx context.Context, repo Repository) error {
	if repo == nil {
		return nil
	}

	count, err := repo.CountAnnouncements(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []entity.DbAnnouncement{
		{
			Title:    "Welcome to MemberHub",
			Content:  "We are thrilled to launch our new platform!",
			Priority: entity.AnnouncementPriorityMedium,
		},
		{
			Title:    "Upcoming Leadership Retreat",
			Content:  "Leadership members check your email for details.",
			Priority: entity.AnnouncementPriorityHigh,
		},
	}

	for i := range seeds {
		if err := repo.CreateAnnouncement(ctx, &seeds[i]); err != nil {
			return err
		}
	}
	return nil
}
