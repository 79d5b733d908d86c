// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/bookman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成する。
	// email一意制約に違反した場合はmodel.APIError（DUPLICATE_EMAIL）を返す。
	Create(ctx context.Context, user *model.User) error

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// BookQuery は蔵書一覧取得の検索条件を表す。
// SortByは呼び出し側で許可済みカラム名に正規化されていることを前提とする。
type BookQuery struct {
	Limit        int
	Offset       int
	SortBy       string
	Order        model.SortOrder
	TitleFilter  string
	AuthorFilter string
}

// BookRepository は蔵書データの永続化インターフェース。
type BookRepository interface {
	// Create は蔵書を作成し、採番されたIDとタイムスタンプをbookに書き戻す。
	Create(ctx context.Context, book *model.Book) error

	// FindByID は指定IDの蔵書を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	// List は検索条件に合致する蔵書の1ページ分と、条件に合致する総件数を返す。
	// フィルタは部分一致かつ大文字小文字を区別しない。
	List(ctx context.Context, q BookQuery) ([]*model.Book, int, error)

	// Update は蔵書のタイトルと著者を置き換える。
	Update(ctx context.Context, book *model.Book) error

	// Delete は指定IDの蔵書を削除する。
	Delete(ctx context.Context, id int64) error
}
