// Package model はドメインモデルを定義する。
package model

import "time"

// Book は蔵書レコードを表す。
// IDはデータベースが採番する連番。TitleとAuthorは常に非空。
type Book struct {
	ID        int64
	Title     string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SortOrder は一覧取得時のソート方向を表す。
type SortOrder string

const (
	// SortAsc は昇順ソート。
	SortAsc SortOrder = "asc"
	// SortDesc は降順ソート。
	SortDesc SortOrder = "desc"
)
