package services

import (
	"context"

	"github.com/vizzuality/rwgo/resources"
)

// CatalogService is a long-running facade exposing catalog searches and
// fetches over REST.
type CatalogService interface {
	// Starts the service on the given port, blocking until it stops.
	Start(port int) error
	// Gracefully shuts down the service without interrupting active
	// connections.
	Shutdown(ctx context.Context) error
	// Closes down the service, freeing all resources.
	Close()
}

// this type encodes a JSON object for responding to root queries
type ServiceInfoResponse struct {
	Name    string `json:"name" doc:"The name of the service API"`
	Version string `json:"version" example:"1.0.0" doc:"The version string (major.minor.patch)"`
	Uptime  int    `json:"uptime" example:"345600" doc:"The time the service has been up (seconds)"`
	Catalog string `json:"catalog" example:"https://api.resourcewatch.org" doc:"The catalog this facade fronts"`
}

// a response describing one catalog resource
type ResourceResponse struct {
	Id          string   `json:"id" doc:"the server-assigned resource ID"`
	Kind        string   `json:"kind" example:"dataset" doc:"dataset, table, or layer"`
	Name        string   `json:"name" doc:"the resource's display name"`
	Provider    string   `json:"provider,omitempty" example:"cartodb" doc:"the resource's data provider"`
	Application []string `json:"application,omitempty" doc:"applications the resource belongs to"`
	UpdatedAt   string   `json:"updated_at,omitempty" doc:"last modification timestamp"`
	Layers      int      `json:"layers,omitempty" doc:"number of attached layers (datasets only)"`
}

// a response for a collection search (GET)
type SearchResultsResponse struct {
	// the given search terms
	Search string `json:"search" example:"forest loss" doc:"the given search terms"`
	// resources matching the search
	Resources []ResourceResponse `json:"resources" doc:"an array of matching resources"`
}

// maps a typed resource onto its response representation
func responseFromResource(res resources.Resource) ResourceResponse {
	attrs := res.Attributes()
	return ResourceResponse{
		Id:          res.Id(),
		Kind:        string(res.Kind()),
		Name:        attrs.GetString("name"),
		Provider:    attrs.GetString("provider"),
		Application: attrs.GetStringList("application"),
		UpdatedAt:   attrs.GetString("updatedAt"),
	}
}
