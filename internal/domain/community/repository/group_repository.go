package repository

import (
	"context"
	"thywilluche/internal/domain/community/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroupByID(ctx context.Context, id string) (*model.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error)
	ListGroups(ctx context.Context, activeOnly bool) ([]model.Group, error)
	UpdateGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, id string) error
	CountPosts(ctx context.Context, groupID string) (int64, error)
	GroupCounts(ctx context.Context, groupIDs []string) (posts map[string]int64, members map[string]int64, err error)

	// UpsertMember 不存在则创建，已存在则重新激活
	UpsertMember(ctx context.Context, member *model.GroupMember) error
	DeactivateMember(ctx context.Context, groupID, userID string) (bool, error)
	IsActiveMember(ctx context.Context, groupID, userID string) (bool, error)
	ListUserGroups(ctx context.Context, userID string) ([]model.Group, error)
	ListMembers(ctx context.Context, groupID string, offset, limit int) ([]model.GroupMember, int64, error)
}

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) CreateGroup(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetGroupByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	var group model.Group
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) ListGroups(ctx context.Context, activeOnly bool) ([]model.Group, error) {
	query := r.db.WithContext(ctx).Model(&model.Group{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var groups []model.Group
	err := query.Order("name ASC").Find(&groups).Error
	return groups, err
}

func (r *groupRepository) UpdateGroup(ctx context.Context, group *model.Group) error {
	return r.db.WithContext(ctx).Model(group).
		Select("name", "description", "type", "image", "is_active").
		Updates(group).Error
}

func (r *groupRepository) DeleteGroup(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Group{}).Error
}

func (r *groupRepository) CountPosts(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

func (r *groupRepository) GroupCounts(ctx context.Context, groupIDs []string) (map[string]int64, map[string]int64, error) {
	posts := make(map[string]int64)
	members := make(map[string]int64)
	if len(groupIDs) == 0 {
		return posts, members, nil
	}

	var rows []countRow
	if err := r.db.WithContext(ctx).Model(&model.Post{}).
		Select("group_id AS id, COUNT(*) AS n").
		Where("group_id IN ?", groupIDs).
		Group("group_id").Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		posts[row.ID] = row.N
	}

	rows = rows[:0]
	if err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Select("group_id AS id, COUNT(*) AS n").
		Where("group_id IN ? AND is_active = ?", groupIDs, true).
		Group("group_id").Scan(&rows).Error; err != nil {
		return nil, nil, err
	}
	for _, row := range rows {
		members[row.ID] = row.N
	}
	return posts, members, nil
}

func (r *groupRepository) UpsertMember(ctx context.Context, member *model.GroupMember) error {
	return r.db.WithContext(ctx).Clauses(clause.Returning{}, clause.OnConflict{
		Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_active": true,
			"joined_at": gorm.Expr("CASE WHEN group_members.is_active THEN group_members.joined_at ELSE EXCLUDED.joined_at END"),
		}),
	}).Create(member).Error
}

func (r *groupRepository) DeactivateMember(ctx context.Context, groupID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		Update("is_active", false)
	return res.RowsAffected > 0, res.Error
}

func (r *groupRepository) IsActiveMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		Count(&count).Error
	return count > 0, err
}

func (r *groupRepository) ListUserGroups(ctx context.Context, userID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).Model(&model.Group{}).
		Joins("JOIN group_members ON group_members.group_id = community_groups.id").
		Where("group_members.user_id = ? AND group_members.is_active = ?", userID, true).
		Order("community_groups.name ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID string, offset, limit int) ([]model.GroupMember, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND is_active = ?", groupID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []model.GroupMember
	if err := query.Order("joined_at ASC").Offset(offset).Limit(limit).Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}
