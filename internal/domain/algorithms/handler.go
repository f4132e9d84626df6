package algorithms

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crtormo/resicentral/internal/platform/auth"
	"github.com/crtormo/resicentral/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints – any clinical role
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "resident"))
	readGroup.GET("/algorithms", h.List)
	readGroup.GET("/algorithms/featured", h.ListFeatured)
	readGroup.GET("/algorithms/search", h.Search)
	readGroup.GET("/algorithms/type/:type", h.ListByType)
	readGroup.GET("/algorithms/uuid/:uuid", h.GetByUUID)
	readGroup.GET("/algorithms/:id", h.Get)
	readGroup.GET("/algorithms/:id/full", h.GetFull)
	readGroup.GET("/algorithms/:id/start-node", h.StartNode)
	readGroup.GET("/algorithms/:id/nodes", h.ListNodes)
	readGroup.GET("/algorithms/:id/edges", h.ListEdges)
	readGroup.GET("/algorithms/:id/nodes/:nodeID/edges", h.OutgoingEdges)
	readGroup.GET("/algorithms/:id/nodes/:nodeID/incoming-edges", h.IncomingEdges)

	// Write endpoints – admin only
	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/algorithms", h.Create)
	writeGroup.POST("/algorithms/seed", h.Seed)
	writeGroup.DELETE("/algorithms/:id", h.Delete)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// currentUserID resolves the authenticated subject to a numeric user id.
// Dev tokens carry a non-numeric subject and map to user 1.
func currentUserID(c echo.Context) int64 {
	uid, err := strconv.ParseInt(auth.UserIDFromContext(c.Request().Context()), 10, 64)
	if err != nil || uid <= 0 {
		return 1
	}
	return uid
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g, err := h.svc.CreateWithGraph(c.Request().Context(), in, currentUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.GetAndCountView(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) GetByUUID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid uuid")
	}
	a, err := h.svc.GetByUUID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func listFilterFromQuery(c echo.Context) ListFilter {
	var f ListFilter
	if v := c.QueryParam("category"); v != "" {
		f.Category = &v
	}
	if v := c.QueryParam("specialty"); v != "" {
		f.Specialty = &v
	}
	if v := c.QueryParam("algorithm_type"); v != "" {
		f.AlgorithmType = &v
	}
	if v := c.QueryParam("is_published"); v != "" {
		b := v == "true"
		f.IsPublished = &b
	}
	if v := c.QueryParam("is_featured"); v != "" {
		b := v == "true"
		f.IsFeatured = &b
	}
	return f
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), listFilterFromQuery(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Algorithm{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Search(c.Request().Context(), q, listFilterFromQuery(c), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Algorithm{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListFeatured(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, err := h.svc.ListFeatured(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Algorithm{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListByType(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByType(c.Request().Context(), c.Param("type"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if items == nil {
		items = []*Algorithm{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetFull(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	g, err := h.svc.GetFull(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) StartNode(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.svc.ResolveStartNode(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		if errors.Is(err, ErrStartNodeNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "start node not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) ListNodes(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	nodes, err := h.svc.ListNodes(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if nodes == nil {
		nodes = []*Node{}
	}
	return c.JSON(http.StatusOK, nodes)
}

func (h *Handler) ListEdges(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	edges, err := h.svc.ListEdges(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if edges == nil {
		edges = []*Edge{}
	}
	return c.JSON(http.StatusOK, edges)
}

func (h *Handler) nodeEdges(c echo.Context, incoming bool) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	nodeID, err := pathID(c, "nodeID")
	if err != nil {
		return err
	}
	edges, err := h.svc.NodeEdges(c.Request().Context(), id, nodeID, incoming)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "node not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, edges)
}

func (h *Handler) OutgoingEdges(c echo.Context) error {
	return h.nodeEdges(c, false)
}

func (h *Handler) IncomingEdges(c echo.Context) error {
	return h.nodeEdges(c, true)
}

func (h *Handler) Seed(c echo.Context) error {
	if err := h.svc.Seed(c.Request().Context(), currentUserID(c)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Algoritmos de ejemplo creados exitosamente"})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "algorithm not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
