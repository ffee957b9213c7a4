package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Registrar mounts its routes on the versioned API group
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts resource groups under /api/<version>. Middleware added with
// Use applies to the versioned routes only, so /health and /metrics stay
// public.
type Router struct {
	engine     *gin.Engine
	version    string
	middleware []gin.HandlerFunc
	registrars []Registrar
}

type Option func(*Router)

// WithAPIVersion replaces the default "v1" prefix
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.version = version }
}

func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, version: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

func (r *Router) Register(registrars ...Registrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup creates the versioned group and mounts every registrar on it
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.version, r.middleware...)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// Group declares the routes of one resource before they are mounted. Routes
// are registered in declaration order.
type Group struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

func NewGroup(prefix string) *Group {
	return &Group{prefix: prefix}
}

// Use adds middleware that runs for this group's routes only
func (g *Group) Use(middleware ...gin.HandlerFunc) *Group {
	g.middleware = append(g.middleware, middleware...)
	return g
}

func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *Group) GET(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, handlers...)
}

func (g *Group) POST(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, handlers...)
}

func (g *Group) PUT(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, handlers...)
}

func (g *Group) DELETE(path string, handlers ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, handlers...)
}

func (g *Group) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(g.prefix, g.middleware...)
	for _, rt := range g.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}
