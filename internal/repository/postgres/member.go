package postgres

import (
	"context"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

func (pr *postgresRepository) GetMember(p context.Context, id int64) (*model.Member, error) {
	member := &model.Member{}
	err := pr.db.QueryRowContext(p,
		"SELECT id, nickname FROM forum.members WHERE id = $1 AND deleted_at IS NULL", id).Scan(
		&member.ID, &member.Nickname)
	if err != nil {
		return nil, notFound(err)
	}
	return member, nil
}

func (pr *postgresRepository) GetProfiles(p context.Context, memberID int64) ([]model.Profile, error) {
	rows, err := pr.db.QueryContext(p, `SELECT id, member_id, image_url, priority, created_at
		FROM forum.member_profiles
		WHERE member_id = $1 AND deleted_at IS NULL
		ORDER BY priority DESC, created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		profile := model.Profile{}
		if err := rows.Scan(&profile.ID, &profile.MemberID, &profile.ImageURL, &profile.Priority, &profile.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}
