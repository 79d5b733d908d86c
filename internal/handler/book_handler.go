package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/bookman/internal/catalog"
	"github.com/hitoshi/bookman/internal/model"
)

// BookServiceInterface は蔵書ハンドラーが必要とするサービスインターフェース。
type BookServiceInterface interface {
	// Create は蔵書を新規作成する。
	Create(ctx context.Context, title, author string) (*model.Book, error)
	// List は蔵書一覧をフィルタ・ソート・ページネーション付きで返す。
	List(ctx context.Context, q catalog.ListQuery) (*catalog.ListResult, error)
	// Get は指定IDの蔵書を返す。
	Get(ctx context.Context, id int64) (*model.Book, error)
	// Update は指定IDの蔵書を丸ごと置き換える。
	Update(ctx context.Context, id int64, title, author string) (*model.Book, error)
	// Delete は指定IDの蔵書を削除する。
	Delete(ctx context.Context, id int64) error
}

// CatalogMetrics は蔵書ハンドラーが記録するメトリクスのインターフェース。
type CatalogMetrics interface {
	RecordBookCreated()
	RecordBookDeleted()
}

// BookHandler は蔵書管理のHTTPハンドラー。
type BookHandler struct {
	service BookServiceInterface
	metrics CatalogMetrics
}

// NewBookHandler はBookHandlerを生成する。
func NewBookHandler(service BookServiceInterface, metrics CatalogMetrics) *BookHandler {
	return &BookHandler{
		service: service,
		metrics: metrics,
	}
}

// bookRequest は蔵書作成・更新リクエストのボディ。
type bookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// bookResponse は蔵書情報のAPIレスポンス。
type bookResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// bookListResponse は蔵書一覧のAPIレスポンス。
type bookListResponse struct {
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
	Data  []bookResponse `json:"data"`
}

// messageResponse は削除成功時などのメッセージレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// CreateBook は蔵書の新規作成を処理する。
// POST /books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	book, err := h.service.Create(r.Context(), req.Title, req.Author)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordBookCreated()

	writeJSONResponse(w, http.StatusCreated, toBookResponse(book))
}

// ListBooks は蔵書一覧を取得する。
// GET /books?page=&limit=&sortBy=&order=&title=&author=
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// 数値に解析できないpage/limitは0のままサービス層でデフォルトに正規化される
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.service.List(r.Context(), catalog.ListQuery{
		Page:   page,
		Limit:  limit,
		SortBy: q.Get("sortBy"),
		Order:  q.Get("order"),
		Title:  q.Get("title"),
		Author: q.Get("author"),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	data := make([]bookResponse, 0, len(result.Books))
	for _, book := range result.Books {
		data = append(data, toBookResponse(book))
	}

	writeJSONResponse(w, http.StatusOK, bookListResponse{
		Total: result.Total,
		Page:  result.Page,
		Pages: result.Pages,
		Data:  data,
	})
}

// GetBook は蔵書詳細を取得する。
// GET /books/:id
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toBookResponse(book))
}

// UpdateBook は蔵書の更新を処理する。
// PUT /books/:id
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	book, err := h.service.Update(r.Context(), id, req.Title, req.Author)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toBookResponse(book))
}

// DeleteBook は蔵書の削除を処理する。
// DELETE /books/:id
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBookID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordBookDeleted()

	writeJSONResponse(w, http.StatusOK, messageResponse{Message: "蔵書を削除しました。"})
}

// parseBookID はURLパラメータの蔵書IDを解析する。
// 数値でない場合は404を書き込み、falseを返す。
func parseBookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewBookNotFoundError(0))
		return 0, false
	}
	return id, true
}

// toBookResponse はmodel.BookからAPIレスポンスに変換する。
func toBookResponse(book *model.Book) bookResponse {
	return bookResponse{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		CreatedAt: book.CreatedAt,
		UpdatedAt: book.UpdatedAt,
	}
}
