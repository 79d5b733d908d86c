package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/bookman/internal/metrics"
	"github.com/hitoshi/bookman/internal/middleware"
)

// HealthPinger はヘルスチェックで疎通確認する依存のインターフェース。
// *sql.DBが満たす。
type HealthPinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TokenVerifier     middleware.TokenVerifier

	// サービス
	AuthService AuthServiceInterface
	BookService BookServiceInterface

	// 監視
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
	DB              HealthPinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Metrics → Recovery
//
// 認証ミドルウェアは蔵書の参照系ルート（GET /books, GET /books/{id}）にのみ適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewRecoveryMiddleware())

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	bookHandler := NewBookHandler(deps.BookService, deps.Metrics)
	requireAuth := middleware.NewAuthMiddleware(deps.TokenVerifier)

	// --- 運用エンドポイント ---
	r.Get("/health", newHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))

	// --- 認証 ---
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// --- 蔵書管理 ---
	r.Route("/books", func(r chi.Router) {
		r.Post("/", bookHandler.CreateBook)
		r.With(requireAuth).Get("/", bookHandler.ListBooks)

		r.Route("/{id}", func(r chi.Router) {
			r.With(requireAuth).Get("/", bookHandler.GetBook)
			r.Put("/", bookHandler.UpdateBook)
			r.Delete("/", bookHandler.DeleteBook)
		})
	})

	return r
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// newHealthHandler はDB疎通を含むヘルスチェックハンドラーを返す。
// DBに到達できない場合は503を返す。
func newHealthHandler(db HealthPinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			slog.Warn("health check failed", slog.String("error", err.Error()))
			writeJSONResponse(w, http.StatusServiceUnavailable, healthResponse{
				Status:   "unavailable",
				Database: "down",
			})
			return
		}

		writeJSONResponse(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Database: "up",
		})
	}
}
