package service

import (
	"context"
	"testing"
	"thywilluche/internal/domain/community/model"
	usermodel "thywilluche/internal/domain/user/model"
	pkgmodel "thywilluche/pkg/model"
	"thywilluche/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newGroup(id, slug string, active bool) *model.Group {
	return &model.Group{
		BaseModel: pkgmodel.BaseModel{ID: id},
		Name:      "Readers",
		Slug:      slug,
		Type:      model.GroupBookClub,
		IsActive:  active,
	}
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("Slug derived from name", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("CreateGroup", mock.MatchedBy(func(g *model.Group) bool {
			return g.Slug == "night-owls-book-club" && g.Type == model.GroupGeneral && g.IsActive && g.CreatedBy == "admin"
		})).Return(nil)

		group, err := svc.CreateGroup(ctx, "admin", GroupInput{Name: "Night Owls Book Club"})

		require.NoError(t, err)
		assert.Equal(t, "night-owls-book-club", group.Slug)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate slug", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("CreateGroup", mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := svc.CreateGroup(ctx, "admin", GroupInput{Name: "Poets", Slug: "poets"})
		assert.ErrorIs(t, err, ErrGroupSlugTaken)
	})

	t.Run("Invalid type", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))

		_, err := svc.CreateGroup(ctx, "admin", GroupInput{Name: "Poets", Type: "chess"})
		assert.ErrorIs(t, err, ErrInvalidGroupType)
		repo.AssertNotCalled(t, "CreateGroup", mock.Anything)
	})
}

func TestDeleteGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("Refused while posts exist", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupByID", "g-1").Return(newGroup("g-1", "poets", true), nil)
		repo.On("CountPosts", "g-1").Return(int64(3), nil)

		err := svc.DeleteGroup(ctx, "g-1")

		assert.ErrorIs(t, err, ErrGroupHasPosts)
		repo.AssertNotCalled(t, "DeleteGroup", mock.Anything)
	})

	t.Run("Empty group", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupByID", "g-1").Return(newGroup("g-1", "poets", true), nil)
		repo.On("CountPosts", "g-1").Return(int64(0), nil)
		repo.On("DeleteGroup", "g-1").Return(nil)

		assert.NoError(t, svc.DeleteGroup(ctx, "g-1"))
		repo.AssertExpectations(t)
	})

	t.Run("Unknown group", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupByID", "g-1").Return(nil, gorm.ErrRecordNotFound)

		assert.ErrorIs(t, svc.DeleteGroup(ctx, "g-1"), ErrGroupNotFound)
	})
}

func TestUpdateGroup_KeepsSlug(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGroupRepository)
	svc := NewGroupService(repo, new(MockUserDirectory))
	repo.On("GetGroupByID", "g-1").Return(newGroup("g-1", "poets", true), nil)
	repo.On("UpdateGroup", mock.Anything).Return(nil)

	inactive := false
	group, err := svc.UpdateGroup(ctx, "g-1", GroupInput{Name: "Poetry Circle", Slug: "ignored", IsActive: &inactive})

	require.NoError(t, err)
	assert.Equal(t, "poets", group.Slug)
	assert.Equal(t, "Poetry Circle", group.Name)
	assert.False(t, group.IsActive)
}

func TestUpdateGroup_KeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGroupRepository)
	svc := NewGroupService(repo, new(MockUserDirectory))
	existing := newGroup("g-1", "poets", true)
	existing.Description = "Weekly readings"
	existing.Image = "https://cdn.example.com/poets.png"
	repo.On("GetGroupByID", "g-1").Return(existing, nil)
	repo.On("UpdateGroup", mock.Anything).Return(nil)

	desc := "Monthly readings"
	group, err := svc.UpdateGroup(ctx, "g-1", GroupInput{Name: "Poets", Description: &desc})

	require.NoError(t, err)
	assert.Equal(t, "Monthly readings", group.Description)
	assert.Equal(t, "https://cdn.example.com/poets.png", group.Image)
	assert.True(t, group.IsActive)
}

func TestMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("Join active group", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupBySlug", "poets").Return(newGroup("g-1", "poets", true), nil)
		repo.On("UpsertMember", mock.MatchedBy(func(m *model.GroupMember) bool {
			return m.GroupID == "g-1" && m.UserID == "u-1" && m.IsActive && m.Role == model.MemberRoleMember
		})).Return(nil)

		member, err := svc.JoinGroup(ctx, "u-1", "poets")
		require.NoError(t, err)
		assert.True(t, member.IsActive)
	})

	t.Run("Join inactive group", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupBySlug", "poets").Return(newGroup("g-1", "poets", false), nil)

		_, err := svc.JoinGroup(ctx, "u-1", "poets")
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})

	t.Run("Leave without membership", func(t *testing.T) {
		repo := new(MockGroupRepository)
		svc := NewGroupService(repo, new(MockUserDirectory))
		repo.On("GetGroupBySlug", "poets").Return(newGroup("g-1", "poets", true), nil)
		repo.On("DeactivateMember", "g-1", "u-1").Return(false, nil)

		assert.ErrorIs(t, svc.LeaveGroup(ctx, "u-1", "poets"), ErrNotGroupMember)
	})

	t.Run("List members with user summaries", func(t *testing.T) {
		repo := new(MockGroupRepository)
		users := new(MockUserDirectory)
		svc := NewGroupService(repo, users)
		repo.On("GetGroupBySlug", "poets").Return(newGroup("g-1", "poets", true), nil)
		repo.On("ListMembers", "g-1", 0, 10).Return([]model.GroupMember{{GroupID: "g-1", UserID: "u-1"}}, int64(1), nil)
		users.On("GetSummaries", []string{"u-1"}).Return(map[string]usermodel.Summary{"u-1": {ID: "u-1", Username: "ada"}}, nil)

		members, total, err := svc.ListGroupMembers(ctx, "poets", utils.Pagination{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "ada", members[0].User.Username)
	})
}

func TestGroupCounts(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGroupRepository)
	svc := NewGroupService(repo, new(MockUserDirectory))
	repo.On("ListGroups", true).Return([]model.Group{*newGroup("g-1", "poets", true), *newGroup("g-2", "writers", true)}, nil)
	repo.On("GroupCounts", []string{"g-1", "g-2"}).Return(
		map[string]int64{"g-1": 4},
		map[string]int64{"g-1": 2, "g-2": 7},
		nil,
	)

	groups, err := svc.ListGroups(ctx, true)

	require.NoError(t, err)
	assert.Equal(t, int64(4), groups[0].PostCount)
	assert.Equal(t, int64(2), groups[0].MemberCount)
	assert.Equal(t, int64(0), groups[1].PostCount)
	assert.Equal(t, int64(7), groups[1].MemberCount)
}

func TestGetGroup_Inactive(t *testing.T) {
	ctx := context.Background()
	repo := new(MockGroupRepository)
	svc := NewGroupService(repo, new(MockUserDirectory))
	repo.On("GetGroupBySlug", "poets").Return(newGroup("g-1", "poets", false), nil)
	repo.On("GroupCounts", []string{"g-1"}).Return(map[string]int64{}, map[string]int64{}, nil)

	_, err := svc.GetGroup(ctx, "poets", false)
	assert.ErrorIs(t, err, ErrGroupNotFound)

	group, err := svc.GetGroup(ctx, "poets", true)
	require.NoError(t, err)
	assert.Equal(t, "g-1", group.ID)
}
