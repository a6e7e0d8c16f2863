package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// actorHeader carries the acting user's id. Authentication lives outside
// this service; an upstream gateway is expected to set the header from a
// verified identity.
const actorHeader = "X-Actor-ID"

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, corsOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = corsOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, actorHeader)
	if len(corsCfg.AllowOrigins) == 1 && corsCfg.AllowOrigins[0] == "*" {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &orderHandlers{svc: deps.OrderSvc, logger: logger}

	router.POST("/orders", h.create)
	router.GET("/orders", h.listForBuyer)
	router.GET("/orders/status-counts", h.statusCounts)
	router.GET("/orders/by-number/:orderNumber", h.getByNumber)
	router.GET("/orders/:id", h.getByID)
	router.POST("/orders/:id/pay", h.pay)
	router.POST("/orders/:id/ship", h.ship)
	router.POST("/orders/:id/receive", h.receive)
	router.POST("/orders/:id/cancel", h.cancel)
	router.POST("/orders/:id/refund", h.requestRefund)
	router.POST("/orders/:id/refund-decision", h.decideRefund)
	router.GET("/stores/:id/orders", h.listForStore)

	return router
}

// requireActor reads the actor header, rejecting requests without one.
func requireActor(c *gin.Context) (string, bool) {
	actor := c.GetHeader(actorHeader)
	if actor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing " + actorHeader + " header"})
		return "", false
	}
	return actor, true
}
