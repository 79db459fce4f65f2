package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humamux"
	"github.com/gorilla/mux"
	"golang.org/x/net/netutil"

	"github.com/vizzuality/rwgo/catalog"
	"github.com/vizzuality/rwgo/collection"
	"github.com/vizzuality/rwgo/config"
	"github.com/vizzuality/rwgo/resources"
)

// Version numbers
var majorVersion = 0
var minorVersion = 1
var patchVersion = 0

// Version string
var version = fmt.Sprintf("%d.%d.%d", majorVersion, minorVersion, patchVersion)

// This type implements the CatalogService interface, exposing read-only
// catalog searches and fetches over REST. Mutations stay library-side.
type prototype struct {
	// name of the service
	Name string
	// service version identifier
	Version string
	// time which the service was started
	StartTime time.Time
	// port on which the service currently runs
	Port int
	// router for REST endpoints
	Router *mux.Router
	// API wrapper
	API huma.API
	// HTTP server.
	Server *http.Server
	// client used to reach the catalog
	Client *catalog.Client
}

type ServiceInfoOutput struct {
	Body ServiceInfoResponse `doc:"information about the service itself"`
}

// handler method for root
func (service *prototype) getRoot(ctx context.Context,
	input *struct{}) (*ServiceInfoOutput, error) {

	slog.Info("Querying root endpoint...")
	return &ServiceInfoOutput{
		Body: ServiceInfoResponse{
			Name:    service.Name,
			Version: service.Version,
			Uptime:  int(service.uptime()),
			Catalog: config.Catalog.URL,
		},
	}, nil
}

type SearchResultsOutput struct {
	Body SearchResultsResponse `doc:"Resources matching the given search terms"`
}

// handler method for collection searches
func (service *prototype) search(ctx context.Context,
	input *struct {
		Search     string `query:"search" example:"forest loss" doc:"Free-text search terms"`
		ObjectType string `query:"object_type" example:"dataset,layer" doc:"Comma-separated object types to search"`
		Limit      int    `query:"limit" example:"5" doc:"Maximum number of results"`
		Order      string `query:"order" example:"name" doc:"Attribute to order results by"`
		Sort       string `query:"sort" example:"desc" doc:"Sort rule (asc or desc)"`
	}) (*SearchResultsOutput, error) {

	slog.Info(fmt.Sprintf("Searching the catalog for '%s'...", input.Search))
	opts := collection.Options{
		Limit: input.Limit,
		Order: input.Order,
		Sort:  input.Sort,
	}
	if input.ObjectType != "" {
		opts.ObjectTypes = strings.Split(input.ObjectType, ",")
	}

	coll, err := collection.New(service.Client, input.Search, opts)
	if err != nil {
		var emptyErr *catalog.EmptyCatalogError
		var orderErr *collection.OrderKeyError
		switch {
		case errors.As(err, &emptyErr):
			return nil, huma.Error404NotFound(err.Error())
		case errors.As(err, &orderErr):
			return nil, huma.Error422UnprocessableEntity(err.Error())
		default:
			return nil, err
		}
	}

	results := make([]ResourceResponse, 0, coll.Len())
	for _, item := range coll.Items() {
		results = append(results, responseFromResource(item))
	}
	return &SearchResultsOutput{
		Body: SearchResultsResponse{
			Search:    input.Search,
			Resources: results,
		},
	}, nil
}

type ResourceOutput struct {
	Body ResourceResponse `doc:"Information about the requested resource"`
}

// handler method for fetching one dataset by ID
func (service *prototype) getDataset(ctx context.Context,
	input *struct {
		Id string `path:"id" doc:"the ID of a dataset"`
	}) (*ResourceOutput, error) {

	slog.Info(fmt.Sprintf("Fetching dataset %s...", input.Id))
	dataset, err := resources.NewDataset(service.Client, input.Id)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, err
	}
	response := responseFromResource(dataset)
	response.Layers = len(dataset.Layers())
	return &ResourceOutput{Body: response}, nil
}

// handler method for fetching one layer by ID
func (service *prototype) getLayer(ctx context.Context,
	input *struct {
		Id string `path:"id" doc:"the ID of a layer"`
	}) (*ResourceOutput, error) {

	slog.Info(fmt.Sprintf("Fetching layer %s...", input.Id))
	layer, err := resources.NewLayer(service.Client, input.Id)
	if err != nil {
		var notFound *catalog.NotFoundError
		if errors.As(err, &notFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, err
	}
	return &ResourceOutput{Body: responseFromResource(layer)}, nil
}

// returns the uptime for the service in seconds
func (service *prototype) uptime() float64 {
	return time.Since(service.StartTime).Seconds()
}

// constructs a catalog facade service given our configuration
func NewCatalogService() (CatalogService, error) {

	// validate our configuration
	if config.Catalog.URL == "" {
		return nil, fmt.Errorf("No catalog URL was specified.")
	}
	client, err := catalog.NewClient(catalog.Config{URL: config.Catalog.URL})
	if err != nil {
		return nil, err
	}

	service := new(prototype)
	service.Name = "rwgo catalog facade"
	service.Version = version
	service.Port = -1
	service.Client = client

	// set up routing
	service.Router = mux.NewRouter()
	api := humamux.New(service.Router, huma.DefaultConfig(service.Name, service.Version))
	huma.Get(api, "/", service.getRoot)

	// API v1
	huma.Get(api, "/api/v1/search", service.search)
	huma.Get(api, "/api/v1/datasets/{id}", service.getDataset)
	huma.Get(api, "/api/v1/layers/{id}", service.getLayer)

	service.API = api
	return service, nil
}

// starts the catalog facade service
func (service *prototype) Start(port int) error {
	slog.Info(fmt.Sprintf("Starting %s service on port %d...", service.Name, port))
	slog.Info(fmt.Sprintf("(Accepting up to %d connections)", config.Service.MaxConnections))

	service.StartTime = time.Now()

	// create a listener that limits the number of incoming connections
	service.Port = port
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return err
	}
	defer listener.Close()
	listener = netutil.LimitListener(listener, config.Service.MaxConnections)

	// start the server
	service.Server = &http.Server{
		Handler: service.Router}
	err = service.Server.Serve(listener)

	// we don't report the server closing as an error
	if err != http.ErrServerClosed {
		return err
	}
	return nil
}

// gracefully shuts down the service without interrupting active connections
func (service *prototype) Shutdown(ctx context.Context) error {
	if service.Server != nil {
		return service.Server.Shutdown(ctx)
	}
	return nil
}

// closes down the service abruptly, freeing all resources
func (service *prototype) Close() {
	if service.Server != nil {
		service.Server.Close()
	}
}
