package server

import (
	"html/template"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/paydash/internal/dashboard"
	"github.com/smallbiznis/paydash/internal/payroll/domain"
	"github.com/smallbiznis/paydash/internal/presentation"
)

type MetricOption struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

type OptionsResponse struct {
	Entities []string         `json:"entities"`
	Metrics  []MetricOption   `json:"metrics"`
	Defaults domain.Selection `json:"defaults"`
}

type RegionsResponse struct {
	Selection domain.Selection   `json:"selection"`
	Regions   []dashboard.Region `json:"regions"`
}

// InputRequest carries the new value of one input. Only the field matching
// the input is read.
type InputRequest struct {
	Entities *[]string `json:"entities"`
	Metric   *string   `json:"metric"`
}

type EvaluateRequest struct {
	Entities []string               `json:"entities"`
	Metric   string                 `json:"metric"`
	Outputs  []dashboard.OutputName `json:"outputs"`
}

func (s *Server) GetOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.options())
}

func (s *Server) options() OptionsResponse {
	specs := s.registry.Specs()
	metrics := make([]MetricOption, 0, len(specs))
	for _, spec := range specs {
		metrics = append(metrics, MetricOption{Name: spec.Name, Label: spec.Label})
	}
	cfg := s.dashCfg.Get()
	return OptionsResponse{
		Entities: s.table.Entities(),
		Metrics:  metrics,
		Defaults: domain.Selection{Entities: cfg.DefaultEntities, Metric: cfg.DefaultMetric},
	}
}

func (s *Server) GetSelection(c *gin.Context) {
	c.JSON(http.StatusOK, s.dispatcher.Selection())
}

func (s *Server) ListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, RegionsResponse{
		Selection: s.dispatcher.Selection(),
		Regions:   s.dispatcher.Regions(),
	})
}

func (s *Server) GetRegion(c *gin.Context) {
	region, err := s.dispatcher.Region(dashboard.OutputName(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, region)
}

func (s *Server) ExportRegionPDF(c *gin.Context) {
	region, err := s.dispatcher.Region(dashboard.OutputName(c.Param("name")))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if region.Kind != dashboard.KindTable || region.Table == nil {
		AbortWithError(c, dashboard.ErrNotTable)
		return
	}

	doc, err := presentation.RenderTablePDF(*region.Table)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	name := region.Table.Title
	if strings.TrimSpace(name) == "" {
		name = string(region.Name)
	}
	c.Header("Content-Disposition", `attachment; filename="`+slug.Make(name)+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) ApplyInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	input := dashboard.InputName(c.Param("input"))
	change := dashboard.Change{Input: input}
	switch input {
	case dashboard.InputEntitySelection:
		if req.Entities == nil {
			AbortWithError(c, newValidationError("entities", "required", "entities is required"))
			return
		}
		change.Entities = *req.Entities
	case dashboard.InputMetricSelection:
		if req.Metric == nil {
			AbortWithError(c, newValidationError("metric", "required", "metric is required"))
			return
		}
		change.Metric = *req.Metric
	}

	regions, err := s.dispatcher.Apply(c.Request.Context(), change)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, RegionsResponse{
		Selection: s.dispatcher.Selection(),
		Regions:   regions,
	})
}

func (s *Server) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sel := domain.Selection{Entities: req.Entities, Metric: req.Metric}
	regions, err := s.dispatcher.Evaluate(c.Request.Context(), sel, req.Outputs...)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, RegionsResponse{
		Selection: sel.Clone(),
		Regions:   regions,
	})
}

type entityOption struct {
	Name     string
	Selected bool
}

type metricOption struct {
	MetricOption
	Selected bool
}

type pageData struct {
	Entities  []entityOption
	Metrics   []metricOption
	Selection domain.Selection
	Regions   []dashboard.Region
}

// Index renders the dashboard. A submitted metric carries the full entity
// list with it so clearing every agency is expressible from the form. Both
// inputs of one submit are applied as a single interaction.
func (s *Server) Index(c *gin.Context) {
	entities, hasEntities := c.GetQueryArray("entity")
	metric, hasMetric := c.GetQuery("metric")

	var changes []dashboard.Change
	if hasEntities || hasMetric {
		changes = append(changes, dashboard.SelectEntities(entities...))
	}
	if hasMetric {
		changes = append(changes, dashboard.SelectMetric(metric))
	}
	if len(changes) > 0 {
		if _, err := s.dispatcher.ApplyAll(c.Request.Context(), changes...); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	sel := s.dispatcher.Selection()
	opts := s.options()
	data := pageData{
		Selection: sel,
		Regions:   s.dispatcher.Regions(),
		Entities:  make([]entityOption, 0, len(opts.Entities)),
		Metrics:   make([]metricOption, 0, len(opts.Metrics)),
	}
	for _, name := range opts.Entities {
		data.Entities = append(data.Entities, entityOption{Name: name, Selected: slices.Contains(sel.Entities, name)})
	}
	for _, m := range opts.Metrics {
		data.Metrics = append(data.Metrics, metricOption{MetricOption: m, Selected: m.Name == sel.Metric})
	}

	c.HTML(http.StatusOK, "index.html", data)
}

func tableHTML(t *presentation.Table) (template.HTML, error) {
	if t == nil {
		return "", nil
	}
	return presentation.RenderTableHTML(*t)
}
