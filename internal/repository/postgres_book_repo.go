package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/bookman/internal/model"
)

// PostgresBookRepo はPostgreSQLを使用した蔵書リポジトリ。
type PostgresBookRepo struct {
	db *sql.DB
}

// NewPostgresBookRepo はPostgresBookRepoを生成する。
func NewPostgresBookRepo(db *sql.DB) *PostgresBookRepo {
	return &PostgresBookRepo{db: db}
}

// bookSortColumns はORDER BYに使用できるカラム名。
// SQLに直接埋め込むため、この集合以外のカラム名は受け付けない。
var bookSortColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"author":     true,
	"created_at": true,
}

// Create は蔵書を作成し、採番されたIDとタイムスタンプをbookに書き戻す。
func (r *PostgresBookRepo) Create(ctx context.Context, book *model.Book) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO books (title, author) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		book.Title, book.Author,
	).Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// FindByID は指定IDの蔵書を取得する。見つからない場合はnilを返す。
func (r *PostgresBookRepo) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	book := &model.Book{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, author, created_at, updated_at FROM books WHERE id = $1`,
		id,
	).Scan(&book.ID, &book.Title, &book.Author, &book.CreatedAt, &book.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find book by ID: %w", err)
	}

	return book, nil
}

// List は検索条件に合致する蔵書の1ページ分と、条件に合致する総件数を返す。
// フィルタはILIKEによる部分一致（大文字小文字を区別しない）。
// 総件数はLIMIT/OFFSET適用前の件数を別クエリで取得する。
func (r *PostgresBookRepo) List(ctx context.Context, q BookQuery) ([]*model.Book, int, error) {
	var conditions []string
	var args []interface{}

	if q.TitleFilter != "" {
		args = append(args, "%"+q.TitleFilter+"%")
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)))
	}
	if q.AuthorFilter != "" {
		args = append(args, "%"+q.AuthorFilter+"%")
		conditions = append(conditions, fmt.Sprintf("author ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM books"+whereClause,
		args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	sortBy := q.SortBy
	if !bookSortColumns[sortBy] {
		sortBy = "title"
	}
	direction := "ASC"
	if q.Order == model.SortDesc {
		direction = "DESC"
	}

	args = append(args, q.Limit, q.Offset)
	query := fmt.Sprintf(
		"SELECT id, title, author, created_at, updated_at FROM books%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		whereClause, sortBy, direction, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := []*model.Book{}
	for rows.Next() {
		book := &model.Book{}
		if err := rows.Scan(&book.ID, &book.Title, &book.Author, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate books: %w", err)
	}

	return books, total, nil
}

// Update は蔵書のタイトルと著者を置き換える。
func (r *PostgresBookRepo) Update(ctx context.Context, book *model.Book) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE books SET title = $1, author = $2, updated_at = now() WHERE id = $3`,
		book.Title, book.Author, book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewBookNotFoundError(book.ID)
	}
	return nil
}

// Delete は指定IDの蔵書を削除する。
func (r *PostgresBookRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewBookNotFoundError(id)
	}
	return nil
}

// compile-time interface check
var _ BookRepository = (*PostgresBookRepo)(nil)
