package resources

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vizzuality/rwgo/catalog"
	"github.com/vizzuality/rwgo/journal"
)

// server-managed fields that can never be updated by clients
var updateBlacklist = map[string]bool{
	"metadata":        true,
	"layer":           true,
	"vocabulary":      true,
	"updatedAt":       true,
	"userId":          true,
	"slug":            true,
	"clonedHost":      true,
	"errorMessage":    true,
	"taskId":          true,
	"dataLastUpdated": true,
}

// DeleteOptions replace the interactive y/n prompts of older clients with an
// explicit programmatic contract. Confirmed acknowledges the deletion; Force
// bypasses every guard (including the layer-cascade check); CascadeLayers
// deletes a dataset's attached layers first. CascadeLayers alone does not
// confirm the dataset deletion itself.
type DeleteOptions struct {
	Confirmed     bool
	Force         bool
	CascadeLayers bool
}

// returns the attribute subset a client is allowed to update, excluding
// the server-managed blacklist
func updatableFields(attrs Attributes) Attributes {
	fields := make(Attributes)
	for k, v := range attrs {
		if !updateBlacklist[k] {
			fields[k] = v
		}
	}
	return fields
}

// narrows the requested fields to the allowed set; unknown fields are
// silently dropped (the request is narrowed, not rejected)
func narrowFields(requested, allowed Attributes) map[string]any {
	payload := make(map[string]any)
	for k, v := range requested {
		if _, ok := allowed[k]; ok {
			payload[k] = v
		}
	}
	return payload
}

// appends a mutation record to the journal when it is open; journal
// trouble is logged, never propagated into the mutation result
func logMutation(resourceId string, kind Kind, operation, status string) {
	if !journal.IsOpen() {
		return
	}
	err := journal.RecordMutation(journal.Record{
		ResourceId: resourceId,
		Kind:       string(kind),
		Operation:  operation,
		Status:     status,
		Time:       time.Now(),
	})
	if err != nil {
		slog.Error(fmt.Sprintf("Couldn't journal %s of %s '%s': %s",
			operation, kind, resourceId, err.Error()))
	}
}

// shared update path for datasets and layers: PATCH the narrowed fields,
// report (don't raise) HTTP failures, and signal whether to re-fetch
func update(client *catalog.Client, kind catalog.Kind, id, token string,
	payload map[string]any) (bool, error) {

	status, _, err := client.Patch(kind, id, token, payload)
	if err != nil {
		return false, err
	}
	if status < 200 || status > 299 {
		slog.Info(fmt.Sprintf("Update of %s '%s' failed with status %d", kind, id, status))
		return false, nil
	}
	return true, nil
}

// the attribute subset of this dataset a client is allowed to update
func (d *Dataset) UpdatableFields() Attributes {
	return updatableFields(d.attributes)
}

// Update PATCHes the given fields to the catalog. Fields outside the
// updatable set are silently dropped. On a non-success status the status
// is reported and a nil dataset is returned without an error; transport
// failures do raise. On success the full record is re-fetched so the
// returned dataset reflects the server's view, not a partial response.
func (d *Dataset) Update(token string, fields Attributes) (*Dataset, error) {
	if token == "" {
		return nil, &AuthRequiredError{Operation: "update"}
	}
	payload := narrowFields(fields, d.UpdatableFields())
	ok, err := update(d.client, catalog.KindDataset, d.id, token, payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		logMutation(d.id, d.Kind(), "update", "failed")
		return nil, nil
	}
	logMutation(d.id, d.Kind(), "update", "succeeded")
	return d.Refresh()
}

// Delete removes the dataset from the catalog. A dataset with attached
// layers refuses to delete unless CascadeLayers removes the children first
// or Force bypasses the guard entirely; an unconfirmed delete performs no
// request and returns the dataset unchanged. On success the returned
// dataset is nil.
func (d *Dataset) Delete(token string, opts DeleteOptions) (*Dataset, error) {
	if token == "" {
		return nil, &AuthRequiredError{Operation: "delete"}
	}

	if len(d.layers) > 0 && !opts.Force {
		if !opts.CascadeLayers {
			slog.Info(fmt.Sprintf("Dataset '%s' has %d associated layer(s); deletion aborted",
				d.id, len(d.layers)))
			logMutation(d.id, d.Kind(), "delete", "aborted")
			return d, nil
		}
		for _, l := range d.layers {
			if _, err := l.Delete(token, DeleteOptions{Force: true}); err != nil {
				return nil, err
			}
		}
	}

	if !opts.Force && !opts.Confirmed {
		slog.Info(fmt.Sprintf("Deletion of dataset '%s' not confirmed; aborted", d.id))
		logMutation(d.id, d.Kind(), "delete", "aborted")
		return d, nil
	}

	status, err := d.client.Delete(catalog.KindDataset, d.id, token)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		slog.Info(fmt.Sprintf("Deletion of dataset '%s' failed with status %d", d.id, status))
		logMutation(d.id, d.Kind(), "delete", "failed")
		return d, nil
	}
	logMutation(d.id, d.Kind(), "delete", "succeeded")
	return nil, nil
}

// the attribute subset of this layer a client is allowed to update
func (l *Layer) UpdatableFields() Attributes {
	return updatableFields(l.attributes)
}

// Update PATCHes the given fields to the catalog (see Dataset.Update for
// the failure policy).
func (l *Layer) Update(token string, fields Attributes) (*Layer, error) {
	if token == "" {
		return nil, &AuthRequiredError{Operation: "update"}
	}
	payload := narrowFields(fields, l.UpdatableFields())
	ok, err := update(l.client, catalog.KindLayer, l.id, token, payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		logMutation(l.id, l.Kind(), "update", "failed")
		return nil, nil
	}
	logMutation(l.id, l.Kind(), "update", "succeeded")
	return NewLayer(l.client, l.id)
}

// Delete removes the layer from the catalog. An unconfirmed, unforced
// delete performs no request and returns the layer unchanged.
func (l *Layer) Delete(token string, opts DeleteOptions) (*Layer, error) {
	if token == "" {
		return nil, &AuthRequiredError{Operation: "delete"}
	}
	if !opts.Force && !opts.Confirmed {
		logMutation(l.id, l.Kind(), "delete", "aborted")
		return l, nil
	}
	status, err := l.client.Delete(catalog.KindLayer, l.id, token)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		slog.Info(fmt.Sprintf("Deletion of layer '%s' failed with status %d", l.id, status))
		logMutation(l.id, l.Kind(), "delete", "failed")
		return l, nil
	}
	logMutation(l.id, l.Kind(), "delete", "succeeded")
	return nil, nil
}
