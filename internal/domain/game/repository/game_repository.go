package repository

import (
	"context"
	"errors"
	"thywilluche/internal/domain/game/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrForeignSubmission 选出的作品不全属于该游戏
var ErrForeignSubmission = errors.New("submission does not belong to game")

type GameFilter struct {
	ActiveOnly bool
	Type       string
	Offset     int
	Limit      int
}

type GameRepository interface {
	CreateGame(ctx context.Context, g *model.Game) error
	UpdateGame(ctx context.Context, g *model.Game) error
	GetGameByID(ctx context.Context, id string) (*model.Game, error)
	GetGameBySlug(ctx context.Context, slug string) (*model.Game, error)
	ListGames(ctx context.Context, f GameFilter) ([]model.Game, int64, error)

	CreateBadge(ctx context.Context, b *model.Badge) error
	GetBadge(ctx context.Context, id string) (*model.Badge, error)
	ListBadges(ctx context.Context) ([]model.Badge, error)

	CreateSubmission(ctx context.Context, s *model.Submission) error
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	ListSubmissions(ctx context.Context, gameID string, offset, limit int) ([]model.Submission, int64, error)
	UpdateScore(ctx context.Context, id string, score int) error
	// SelectWinners 一个事务内标记获奖并发放徽章，返回获奖用户
	SelectWinners(ctx context.Context, gameID string, submissionIDs []string, badgeID *string, at time.Time) ([]string, error)

	ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error)
}

type gameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepository{db: db}
}

func (r *gameRepository) CreateGame(ctx context.Context, g *model.Game) error {
	return r.db.WithContext(ctx).Omit("Badge").Create(g).Error
}

func (r *gameRepository) UpdateGame(ctx context.Context, g *model.Game) error {
	return r.db.WithContext(ctx).Omit("Badge").Save(g).Error
}

func (r *gameRepository) GetGameByID(ctx context.Context, id string) (*model.Game, error) {
	var g model.Game
	if err := r.db.WithContext(ctx).Preload("Badge").Where("id = ?", id).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) GetGameBySlug(ctx context.Context, slug string) (*model.Game, error) {
	var g model.Game
	if err := r.db.WithContext(ctx).Preload("Badge").Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *gameRepository) ListGames(ctx context.Context, f GameFilter) ([]model.Game, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Game{})
	if f.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var games []model.Game
	if err := query.Preload("Badge").Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).Find(&games).Error; err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (r *gameRepository) CreateBadge(ctx context.Context, b *model.Badge) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *gameRepository) GetBadge(ctx context.Context, id string) (*model.Badge, error) {
	var b model.Badge
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *gameRepository) ListBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	err := r.db.WithContext(ctx).Order("name ASC").Find(&badges).Error
	return badges, err
}

func (r *gameRepository) CreateSubmission(ctx context.Context, s *model.Submission) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *gameRepository) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	var s model.Submission
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *gameRepository) ListSubmissions(ctx context.Context, gameID string, offset, limit int) ([]model.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Submission{}).Where("game_id = ?", gameID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Submission
	if err := query.Order("score DESC NULLS LAST, submitted_at ASC").
		Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *gameRepository) UpdateScore(ctx context.Context, id string, score int) error {
	return r.db.WithContext(ctx).Model(&model.Submission{}).Where("id = ?", id).Update("score", score).Error
}

func (r *gameRepository) SelectWinners(ctx context.Context, gameID string, submissionIDs []string, badgeID *string, at time.Time) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subs []model.Submission
		if err := tx.Select("id", "user_id").
			Where("id IN ? AND game_id = ?", submissionIDs, gameID).
			Find(&subs).Error; err != nil {
			return err
		}
		if len(subs) != len(submissionIDs) {
			return ErrForeignSubmission
		}

		if err := tx.Model(&model.Submission{}).
			Where("id IN ?", submissionIDs).
			Update("is_winner", true).Error; err != nil {
			return err
		}

		userIDs = make([]string, len(subs))
		for i, s := range subs {
			userIDs[i] = s.UserID
		}
		if badgeID == nil {
			return nil
		}

		awards := make([]model.UserBadge, len(subs))
		for i, s := range subs {
			awards[i] = model.UserBadge{UserID: s.UserID, BadgeID: *badgeID, GameID: &gameID, AwardedAt: at}
		}
		// 重复执行时已发放的徽章由唯一索引忽略
		return tx.Omit("Badge", "Game").Clauses(clause.OnConflict{DoNothing: true}).Create(&awards).Error
	})
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *gameRepository) ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	err := r.db.WithContext(ctx).Preload("Badge").Preload("Game", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "title", "slug", "type")
	}).Where("user_id = ?", userID).Order("awarded_at DESC").Find(&badges).Error
	return badges, err
}
