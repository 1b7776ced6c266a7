package service

import (
	"context"
	"errors"
	"strings"
	"thywilluche/internal/domain/game/model"
	"thywilluche/internal/domain/game/repository"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/utils"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxQuestions = 50
	maxOptions   = 8
	maxContent   = 20000
)

type GameInput struct {
	Title        string
	Type         string
	Description  string
	Prompt       string
	Questions    []model.Question
	PuzzleAnswer string
	BadgeID      string
	IsActive     bool
	StartsAt     *time.Time
	EndsAt       *time.Time
}

type BadgeInput struct {
	Name        string
	Type        string
	IconURL     string
	Description string
}

type SubmitInput struct {
	Answers []int
	Content string
}

type GameQuery struct {
	Type string
	utils.Pagination
}

type GameService interface {
	CreateGame(ctx context.Context, in GameInput) (*model.Game, error)
	UpdateGame(ctx context.Context, id string, in GameInput) (*model.Game, error)
	ListGames(ctx context.Context, q GameQuery, isAdmin bool) ([]model.Game, int64, error)
	GetGame(ctx context.Context, slug string, isAdmin bool) (*model.Game, error)

	CreateBadge(ctx context.Context, in BadgeInput) (*model.Badge, error)
	ListBadges(ctx context.Context) ([]model.Badge, error)

	Submit(ctx context.Context, userID, gameID string, in SubmitInput) (*model.Submission, error)
	ListSubmissions(ctx context.Context, gameID string, p utils.Pagination) ([]model.Submission, int64, error)
	ScoreSubmission(ctx context.Context, id string, score int) (*model.Submission, error)
	SelectWinners(ctx context.Context, gameID string, submissionIDs []string) ([]string, error)

	ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error)
}

type gameService struct {
	repo repository.GameRepository
	now  func() time.Time
}

func NewGameService(repo repository.GameRepository) GameService {
	return &gameService{repo: repo, now: time.Now}
}

func validQuestions(qs []model.Question) bool {
	if len(qs) == 0 || len(qs) > maxQuestions {
		return false
	}
	for _, q := range qs {
		if strings.TrimSpace(q.Text) == "" || len(q.Options) < 2 || len(q.Options) > maxOptions {
			return false
		}
		if q.Answer == nil || *q.Answer < 0 || *q.Answer >= len(q.Options) {
			return false
		}
	}
	return true
}

func (s *gameService) apply(ctx context.Context, g *model.Game, in GameInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if !model.IsValidGameType(in.Type) {
		return ErrInvalidGameType
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return ErrInvalidWindow
	}

	g.Questions = nil
	g.PuzzleAnswer = ""
	switch in.Type {
	case model.TypeQuiz:
		if !validQuestions(in.Questions) {
			return ErrInvalidQuestions
		}
		g.Questions = in.Questions
	case model.TypePuzzle:
		answer := strings.TrimSpace(in.PuzzleAnswer)
		if answer == "" {
			return ErrPuzzleAnswer
		}
		g.PuzzleAnswer = answer
	}

	g.BadgeID = nil
	g.Badge = nil
	if in.BadgeID != "" {
		badge, err := s.repo.GetBadge(ctx, in.BadgeID)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrBadgeNotFound
			}
			return err
		}
		g.BadgeID = &badge.ID
		g.Badge = badge
	}

	g.Title = title
	g.Type = in.Type
	g.Description = strings.TrimSpace(in.Description)
	g.Prompt = strings.TrimSpace(in.Prompt)
	g.IsActive = in.IsActive
	g.StartsAt = in.StartsAt
	g.EndsAt = in.EndsAt
	return nil
}

func (s *gameService) CreateGame(ctx context.Context, in GameInput) (*model.Game, error) {
	g := &model.Game{}
	if err := s.apply(ctx, g, in); err != nil {
		return nil, err
	}
	g.Slug = utils.Slugify(g.Title)
	if err := s.repo.CreateGame(ctx, g); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return g, nil
}

// UpdateGame 整体替换，题目和答案需要一起传；类型可以改，已有作品的分数不重新计算
func (s *gameService) UpdateGame(ctx context.Context, id string, in GameInput) (*model.Game, error) {
	g, err := s.findGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, g, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateGame(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *gameService) findGame(ctx context.Context, id string) (*model.Game, error) {
	g, err := s.repo.GetGameByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

// ListGames 非管理员只能看到上线的游戏，且不含答案
func (s *gameService) ListGames(ctx context.Context, q GameQuery, isAdmin bool) ([]model.Game, int64, error) {
	if q.Type != "" && !model.IsValidGameType(q.Type) {
		return nil, 0, ErrInvalidGameType
	}
	offset, limit := q.GetPageOffset()
	games, total, err := s.repo.ListGames(ctx, repository.GameFilter{
		ActiveOnly: !isAdmin,
		Type:       q.Type,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, 0, err
	}
	if !isAdmin {
		for i := range games {
			games[i] = games[i].Public()
		}
	}
	return games, total, nil
}

func (s *gameService) GetGame(ctx context.Context, slug string, isAdmin bool) (*model.Game, error) {
	g, err := s.repo.GetGameBySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	if isAdmin {
		return g, nil
	}
	if !g.IsActive {
		return nil, ErrGameNotFound
	}
	public := g.Public()
	return &public, nil
}

func (s *gameService) CreateBadge(ctx context.Context, in BadgeInput) (*model.Badge, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrTitleRequired
	}
	if !model.IsValidBadgeType(in.Type) {
		return nil, ErrInvalidBadgeType
	}
	badge := &model.Badge{
		Name:        name,
		Type:        in.Type,
		IconURL:     strings.TrimSpace(in.IconURL),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.repo.CreateBadge(ctx, badge); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrBadgeNameTaken
		}
		return nil, err
	}
	return badge, nil
}

func (s *gameService) ListBadges(ctx context.Context) ([]model.Badge, error) {
	return s.repo.ListBadges(ctx)
}

// normalizeAnswer 忽略大小写和所有空白
func normalizeAnswer(v string) string {
	return strings.ToLower(strings.Join(strings.Fields(v), ""))
}

// Submit 选择题和谜题立即评分，写作等待管理员打分
func (s *gameService) Submit(ctx context.Context, userID, gameID string, in SubmitInput) (*model.Submission, error) {
	g, err := s.findGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !g.Open(now) {
		return nil, ErrGameClosed
	}

	sub := &model.Submission{GameID: g.ID, UserID: userID, SubmittedAt: now}
	switch g.Type {
	case model.TypeQuiz:
		if len(in.Answers) != len(g.Questions) {
			return nil, ErrInvalidAnswers
		}
		correct := 0
		for i, a := range in.Answers {
			q := g.Questions[i]
			if a < 0 || a >= len(q.Options) {
				return nil, ErrInvalidAnswers
			}
			if q.Answer != nil && *q.Answer == a {
				correct++
			}
		}
		sub.Answers = in.Answers
		sub.Score = &correct
	case model.TypePuzzle:
		content := strings.TrimSpace(in.Content)
		if content == "" {
			return nil, ErrContentRequired
		}
		score := 0
		if normalizeAnswer(content) == normalizeAnswer(g.PuzzleAnswer) {
			score = 1
		}
		sub.Content = content
		sub.Score = &score
	default:
		content := strings.TrimSpace(in.Content)
		if content == "" {
			return nil, ErrContentRequired
		}
		if utf8.RuneCountInString(content) > maxContent {
			return nil, ErrContentTooLong
		}
		sub.Content = content
	}

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return sub, nil
}

func (s *gameService) ListSubmissions(ctx context.Context, gameID string, p utils.Pagination) ([]model.Submission, int64, error) {
	if _, err := s.findGame(ctx, gameID); err != nil {
		return nil, 0, err
	}
	offset, limit := p.GetPageOffset()
	return s.repo.ListSubmissions(ctx, gameID, offset, limit)
}

func (s *gameService) ScoreSubmission(ctx context.Context, id string, score int) (*model.Submission, error) {
	if score < 0 || score > 100 {
		return nil, ErrInvalidScore
	}
	sub, err := s.repo.GetSubmission(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	g, err := s.findGame(ctx, sub.GameID)
	if err != nil {
		return nil, err
	}
	if g.Type != model.TypeWriting {
		return nil, ErrScoreNotAllowed
	}

	if err := s.repo.UpdateScore(ctx, id, score); err != nil {
		return nil, err
	}
	sub.Score = &score
	return sub, nil
}

// SelectWinners 重复执行结果相同
func (s *gameService) SelectWinners(ctx context.Context, gameID string, submissionIDs []string) ([]string, error) {
	ids := dedupe(submissionIDs)
	if len(ids) == 0 {
		return nil, ErrNoWinners
	}
	g, err := s.findGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	winners, err := s.repo.SelectWinners(ctx, g.ID, ids, g.BadgeID, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrForeignSubmission) {
			return nil, ErrWinnerNotInGame
		}
		return nil, err
	}
	logger.Log.Info("game winners selected", zap.String("game_id", g.ID), zap.Int("count", len(winners)))
	return winners, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *gameService) ListUserBadges(ctx context.Context, userID string) ([]model.UserBadge, error) {
	return s.repo.ListUserBadges(ctx, userID)
}
