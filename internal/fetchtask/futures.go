package fetchtask

import (
	"context"

	"github.com/geo3d/tileviewer/internal/gltfdecode"
	"github.com/geo3d/tileviewer/internal/tileapi"
)

// NodeResult is the outcome of a get_node fetch: the key of the parent
// tile the fetched node should be spliced under, the parsed node, and any
// error encountered.
type NodeResult struct {
	ParentKey string
	Node      tileapi.Node
	Err       error
}

// NodeFuture is a one-shot result channel for a node fetch: buffered so
// the sending task never blocks on a receiver that hasn't polled yet.
type NodeFuture chan NodeResult

// Poll performs a non-blocking check for a ready result. ok is false if
// the task has not completed yet.
func (f NodeFuture) Poll() (result NodeResult, ok bool) {
	select {
	case result = <-f:
		return result, true
	default:
		return NodeResult{}, false
	}
}

// FetchNode schedules a get_node(path) -> (parentKey, Node) task on r and
// returns a future for its result.
func FetchNode(r *Runner, client *tileapi.Client, path, parentKey string) NodeFuture {
	future := make(NodeFuture, 1)
	r.Execute(func(ctx context.Context) {
		node, err := client.GetNode(ctx, path)
		future <- NodeResult{ParentKey: parentKey, Node: node, Err: err}
	})
	return future
}

// ClientResult is the outcome of the client bootstrap task: a ready
// tileapi.Client, or an error if the session handshake failed (e.g. a
// missing or invalid API key).
type ClientResult struct {
	Client *tileapi.Client
	Err    error
}

// ClientFuture is a one-shot result channel for client bootstrap.
type ClientFuture chan ClientResult

// Poll performs a non-blocking check for a ready result.
func (f ClientFuture) Poll() (result ClientResult, ok bool) {
	select {
	case result = <-f:
		return result, true
	default:
		return ClientResult{}, false
	}
}

// BootstrapClient schedules the session-token bootstrap on r and returns a
// future for the resulting Client.
func BootstrapClient(r *Runner, apiKey string, cfg tileapi.Config) ClientFuture {
	future := make(ClientFuture, 1)
	r.Execute(func(ctx context.Context) {
		client, err := tileapi.Bootstrap(ctx, apiKey, cfg)
		future <- ClientResult{Client: client, Err: err}
	})
	return future
}

// ContentResult is the outcome of a get_contents fetch: the decoded CPU
// content ready for GPU upload, or an error.
type ContentResult struct {
	Contents []gltfdecode.CPUContent
	Err      error
}

// ContentFuture is a one-shot result channel for a content (GLB) fetch.
type ContentFuture chan ContentResult

// Poll performs a non-blocking check for a ready result.
func (f ContentFuture) Poll() (result ContentResult, ok bool) {
	select {
	case result = <-f:
		return result, true
	default:
		return ContentResult{}, false
	}
}

// FetchContent schedules a get_contents(path) -> []CpuContent task on r:
// download the GLB then decode it. It returns a future for the result.
func FetchContent(r *Runner, client *tileapi.Client, path string) ContentFuture {
	future := make(ContentFuture, 1)
	r.Execute(func(ctx context.Context) {
		data, err := client.Download(ctx, path)
		if err != nil {
			future <- ContentResult{Err: err}
			return
		}
		contents, err := gltfdecode.Decode(data)
		future <- ContentResult{Contents: contents, Err: err}
	})
	return future
}
