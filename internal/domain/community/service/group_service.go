package service

import (
	"context"
	"strings"
	"thywilluche/internal/domain/community/model"
	"thywilluche/internal/domain/community/repository"
	"thywilluche/pkg/database"
	"thywilluche/pkg/utils"
	"time"
)

type GroupInput struct {
	Name        string
	Slug        string
	Description *string
	Type        string
	Image       *string
	IsActive    *bool
}

type GroupService interface {
	CreateGroup(ctx context.Context, adminID string, in GroupInput) (*model.Group, error)
	UpdateGroup(ctx context.Context, id string, in GroupInput) (*model.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	ListGroups(ctx context.Context, activeOnly bool) ([]model.Group, error)
	GetGroup(ctx context.Context, slug string, includeInactive bool) (*model.Group, error)

	JoinGroup(ctx context.Context, userID, slug string) (*model.GroupMember, error)
	LeaveGroup(ctx context.Context, userID, slug string) error
	ListMyGroups(ctx context.Context, userID string) ([]model.Group, error)
	ListGroupMembers(ctx context.Context, slug string, p utils.Pagination) ([]model.GroupMember, int64, error)
}

type groupService struct {
	repo  repository.GroupRepository
	users UserDirectory
	now   func() time.Time
}

func NewGroupService(repo repository.GroupRepository, users UserDirectory) GroupService {
	return &groupService{repo: repo, users: users, now: time.Now}
}

func (s *groupService) CreateGroup(ctx context.Context, adminID string, in GroupInput) (*model.Group, error) {
	groupType := in.Type
	if groupType == "" {
		groupType = model.GroupGeneral
	}
	if !model.IsValidGroupType(groupType) {
		return nil, ErrInvalidGroupType
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(in.Name)
	}

	group := &model.Group{
		Name:        strings.TrimSpace(in.Name),
		Slug:        slug,
		Description: utils.Deref(in.Description),
		Type:        groupType,
		Image:       utils.Deref(in.Image),
		IsActive:    true,
		CreatedBy:   adminID,
	}
	if in.IsActive != nil {
		group.IsActive = *in.IsActive
	}

	if err := s.repo.CreateGroup(ctx, group); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrGroupSlugTaken
		}
		return nil, err
	}
	return group, nil
}

// UpdateGroup slug 创建后不可修改
func (s *groupService) UpdateGroup(ctx context.Context, id string, in GroupInput) (*model.Group, error) {
	group, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Type != "" {
		if !model.IsValidGroupType(in.Type) {
			return nil, ErrInvalidGroupType
		}
		group.Type = in.Type
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		group.Name = name
	}
	utils.Patch(&group.Description, in.Description)
	utils.Patch(&group.Image, in.Image)
	utils.Patch(&group.IsActive, in.IsActive)

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup 小组下还有帖子时不允许删除
func (s *groupService) DeleteGroup(ctx context.Context, id string) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountPosts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrGroupHasPosts
	}
	return s.repo.DeleteGroup(ctx, id)
}

func (s *groupService) ListGroups(ctx context.Context, activeOnly bool) ([]model.Group, error) {
	groups, err := s.repo.ListGroups(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if err := s.withCounts(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *groupService) GetGroup(ctx context.Context, slug string, includeInactive bool) (*model.Group, error) {
	group, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !group.IsActive && !includeInactive {
		return nil, ErrGroupNotFound
	}

	groups := []model.Group{*group}
	if err := s.withCounts(ctx, groups); err != nil {
		return nil, err
	}
	return &groups[0], nil
}

// JoinGroup 重复加入幂等，退出后再加入重新激活
func (s *groupService) JoinGroup(ctx context.Context, userID, slug string) (*model.GroupMember, error) {
	group, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrGroupNotFound
	}

	member := &model.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     model.MemberRoleMember,
		IsActive: true,
		JoinedAt: s.now(),
	}
	if err := s.repo.UpsertMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *groupService) LeaveGroup(ctx context.Context, userID, slug string) error {
	group, err := s.findBySlug(ctx, slug)
	if err != nil {
		return err
	}
	left, err := s.repo.DeactivateMember(ctx, group.ID, userID)
	if err != nil {
		return err
	}
	if !left {
		return ErrNotGroupMember
	}
	return nil
}

func (s *groupService) ListMyGroups(ctx context.Context, userID string) ([]model.Group, error) {
	groups, err := s.repo.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.withCounts(ctx, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *groupService) ListGroupMembers(ctx context.Context, slug string, p utils.Pagination) ([]model.GroupMember, int64, error) {
	group, err := s.findBySlug(ctx, slug)
	if err != nil {
		return nil, 0, err
	}
	if !group.IsActive {
		return nil, 0, ErrGroupNotFound
	}

	offset, limit := p.GetPageOffset()
	members, total, err := s.repo.ListMembers(ctx, group.ID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, len(members))
	for i := range members {
		ids[i] = members[i].UserID
	}
	summaries, err := s.users.GetSummaries(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range members {
		if u, ok := summaries[members[i].UserID]; ok {
			members[i].User = &u
		}
	}
	return members, total, nil
}

func (s *groupService) withCounts(ctx context.Context, groups []model.Group) error {
	if len(groups) == 0 {
		return nil
	}
	ids := make([]string, len(groups))
	for i := range groups {
		ids[i] = groups[i].ID
	}
	posts, members, err := s.repo.GroupCounts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range groups {
		groups[i].PostCount = posts[groups[i].ID]
		groups[i].MemberCount = members[groups[i].ID]
	}
	return nil
}

func (s *groupService) findByID(ctx context.Context, id string) (*model.Group, error) {
	group, err := s.repo.GetGroupByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *groupService) findBySlug(ctx context.Context, slug string) (*model.Group, error) {
	group, err := s.repo.GetGroupBySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	return group, nil
}
