package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freelancehub/tracker/internal/core/domain"
	"github.com/freelancehub/tracker/internal/core/ports"
)

// ProjectHandler handles HTTP requests for project operations.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

func (r projectRequest) input() (ports.ProjectInput, error) {
	start, err := parseDate(r.StartDate)
	if err != nil {
		return ports.ProjectInput{}, echo.NewHTTPError(http.StatusBadRequest, "start_date must be a date formatted as 2006-01-02")
	}
	deadline, err := parseDate(r.Deadline)
	if err != nil {
		return ports.ProjectInput{}, echo.NewHTTPError(http.StatusBadRequest, "deadline must be a date formatted as 2006-01-02")
	}
	return ports.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		ClientID:    r.ClientID,
		StartDate:   start,
		Deadline:    deadline,
		Budget:      r.Budget,
		Status:      domain.ProjectStatus(r.Status),
	}, nil
}

// List handles GET /projects.
//
// @Summary      List projects
// @Description  Optional filters: case-insensitive name substring and exact status.
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        name    query     string  false  "Name contains"
// @Param        status  query     string  false  "PLANNED, IN_PROGRESS, COMPLETED or CANCELLED"
// @Success      200     {object}  listResponse[projectResponse]
// @Failure      400     {object}  errorResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	projects, err := h.service.List(c.Request().Context(), ports.ListProjectsFilter{
		Name:   c.QueryParam("name"),
		Status: domain.ProjectStatus(c.QueryParam("status")),
	})
	if err != nil {
		return err
	}
	items := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		items = append(items, toProjectResponse(p))
	}
	return c.JSON(http.StatusOK, listResponse[projectResponse]{Items: items, Total: len(items)})
}

// Get handles GET /projects/:id.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(p))
}

// Create handles POST /projects. The project is assigned to the caller.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      projectRequest  true  "Project details"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	p, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProjectResponse(p))
}

// Update handles PUT /projects/:id.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int             true  "Project ID"
// @Param        body  body      projectRequest  true  "Project details"
// @Success      200   {object}  projectResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req projectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := req.input()
	if err != nil {
		return err
	}
	p, err := h.service.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProjectResponse(p))
}

// Delete handles DELETE /projects/:id.
//
// @Summary      Delete a project
// @Tags         projects
// @Security     BearerAuth
// @Param        id   path  int  true  "Project ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
