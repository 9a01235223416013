// Package sf provides types, interfaces, and helpers for working with the
// Service Fabric cluster management REST API.
//
// # Overview
//
// The sf package defines the domain types (ApplicationInfo, NodeInfo,
// ServiceInfo, ...) and the interfaces of the resource clients. A concrete
// implementation is provided by the sfclient package, which wires
// configuration, transport, and authentication.
//
//	cli, err := sfclient.New(ctx, &sf.Config{Endpoint: "https://cluster:19080"})
//	if err != nil { log.Fatal(err) }
//
//	page, err := cli.Nodes().List(ctx, nil, sf.EmptyContinuationToken)
//
// # Continuation tokens
//
// Service Fabric list endpoints return a PagedList: a slice of items and a
// ContinuationToken. An empty token on a page means the collection is
// exhausted; a non-empty one is passed back verbatim to get the next page.
//
// DrainAll is the driver that turns those pages into a single ordered stream:
//
//	result, err := sf.DrainAll(ctx, cli.Nodes().Fetcher(nil), sf.EmptyContinuationToken,
//	  func(node sf.NodeInfo) error {
//	    fmt.Println(node.Name)
//	    return nil
//	  })
//
// Fetches are strictly sequential. A fetch that returns no page ends the
// drain without error. Errors are returned unchanged together with a
// DrainResult that counts the items already emitted.
//
// FetchAllPages, StreamPages and PaginationIterator are built on the same
// semantics for callers that prefer a slice, a channel, or pull iteration.
// BatchDrainer runs several independent drains at once.
package sf
