// Package catalog は蔵書管理のドメインロジックを提供する。
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/bookman/internal/model"
	"github.com/hitoshi/bookman/internal/repository"
)

const (
	// defaultPage はページ番号のデフォルト値。
	defaultPage = 1
	// defaultLimit は1ページあたりの件数のデフォルト値。
	defaultLimit = 10
	// maxLimit は1ページあたりの件数の上限。
	maxLimit = 100
)

// sortFields はAPIのsortByパラメータとして受け付けるフィールド名。
// 許可外の値はデフォルト（title）にフォールバックする。
var sortFields = map[string]string{
	"id":         "id",
	"title":      "title",
	"author":     "author",
	"created_at": "created_at",
}

// Service は蔵書管理のサービス層。
type Service struct {
	bookRepo repository.BookRepository
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(bookRepo repository.BookRepository) *Service {
	return &Service{bookRepo: bookRepo}
}

// ListQuery は一覧取得のクエリパラメータ。ゼロ値はデフォルトに正規化される。
type ListQuery struct {
	Page   int
	Limit  int
	SortBy string
	Order  string
	Title  string
	Author string
}

// ListResult は一覧取得の結果。
type ListResult struct {
	Total int
	Page  int
	Pages int
	Books []*model.Book
}

// Create は蔵書を新規作成する。titleとauthorは必須で、
// 不足している場合はVALIDATION_ERRORに不足フィールドを列挙する。
func (s *Service) Create(ctx context.Context, title, author string) (*model.Book, error) {
	if err := validateBookFields(title, author); err != nil {
		return nil, err
	}

	book := &model.Book{Title: title, Author: author}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("蔵書の作成に失敗しました: %w", err)
	}

	slog.Info("book created",
		slog.Int64("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return book, nil
}

// List は蔵書一覧をフィルタ・ソート・ページネーション付きで返す。
// デフォルト: page=1, limit=10, sortBy=title, order=asc。
// フィルタは部分一致かつ大文字小文字を区別しない。
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	page := q.Page
	if page < 1 {
		page = defaultPage
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	sortBy, ok := sortFields[strings.ToLower(q.SortBy)]
	if !ok {
		sortBy = "title"
	}

	order := model.SortAsc
	if strings.EqualFold(q.Order, "desc") {
		order = model.SortDesc
	}

	books, total, err := s.bookRepo.List(ctx, repository.BookQuery{
		Limit:        limit,
		Offset:       (page - 1) * limit,
		SortBy:       sortBy,
		Order:        order,
		TitleFilter:  q.Title,
		AuthorFilter: q.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("蔵書一覧の取得に失敗しました: %w", err)
	}

	pages := (total + limit - 1) / limit

	return &ListResult{
		Total: total,
		Page:  page,
		Pages: pages,
		Books: books,
	}, nil
}

// Get は指定IDの蔵書を返す。存在しない場合はBOOK_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("蔵書の取得に失敗しました: %w", err)
	}
	if book == nil {
		return nil, model.NewBookNotFoundError(id)
	}
	return book, nil
}

// Update は指定IDの蔵書のtitleとauthorを丸ごと置き換える。
// バリデーションを先に行い、対象が存在しない場合はBOOK_NOT_FOUNDを返す。
func (s *Service) Update(ctx context.Context, id int64, title, author string) (*model.Book, error) {
	if err := validateBookFields(title, author); err != nil {
		return nil, err
	}

	book := &model.Book{ID: id, Title: title, Author: author}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		return nil, err
	}

	// 更新後のタイムスタンプを含む最新状態を返す
	updated, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("更新後の蔵書の取得に失敗しました: %w", err)
	}
	if updated == nil {
		return nil, model.NewBookNotFoundError(id)
	}
	return updated, nil
}

// Delete は指定IDの蔵書を削除する。存在しない場合はBOOK_NOT_FOUNDを返す。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("book deleted",
		slog.Int64("book_id", id),
	)

	return nil
}

// validateBookFields はtitleとauthorの必須チェックを行い、
// 不足フィールドを列挙したVALIDATION_ERRORを返す。
func validateBookFields(title, author string) error {
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if author == "" {
		missing = append(missing, "author")
	}
	if len(missing) > 0 {
		return model.NewValidationError(missing...)
	}
	return nil
}
