package x402

import (
	"strings"
)

// MethodWildcard matches any HTTP method in a route key.
const MethodWildcard = "*"

// RouteEntry binds one route key to a payment policy. A key is either
// "METHOD /path" or just "/path" (any method). Paths are exact strings or a
// prefix ending in "*"; nothing fancier is supported on purpose.
type RouteEntry struct {
	Key    string
	Config RouteConfig
}

// RoutesConfig lists the protected routes. Slice order is configuration
// order: when several patterns match a request, the earliest one wins.
type RoutesConfig []RouteEntry

// RouteConfig is the payment policy for one route key. It is a closed sum:
// exactly StaticRoute or DynamicRoute, checked through the unexported marker
// method.
type RouteConfig interface {
	routeConfig()
}

// StaticRoute charges fixed payment options known at configuration time.
type StaticRoute struct {
	PaymentOptions []PaymentOption
	Description    string
	MimeType       string
}

func (StaticRoute) routeConfig() {}

// DynamicRoute computes payment options per request. The pricer runs once per
// matched request and may read the request body through BodyPeeker.
type DynamicRoute struct {
	Pricer      PricingFunc
	Description string
	MimeType    string
}

func (DynamicRoute) routeConfig() {}

// parseRouteKey splits a route key into method and path. A key without a
// space is method-agnostic: the whole key is the path.
func parseRouteKey(key string) (method, path string) {
	before, after, found := strings.Cut(key, " ")
	if !found {
		return MethodWildcard, key
	}
	return strings.ToUpper(before), after
}

// dynamicEntry is one compiled dynamic route.
type dynamicEntry struct {
	pattern string
	prefix  bool
	route   DynamicRoute
}

// routeTable partitions the configured routes: dynamic entries compiled and
// grouped by method for dispatch, static entries left to the external HTTP
// resource server. Immutable after compileRoutes.
type routeTable struct {
	dynamic map[string][]dynamicEntry
	static  map[string]StaticRoute
}

func compileRoutes(routes RoutesConfig) (*routeTable, error) {
	table := &routeTable{
		dynamic: make(map[string][]dynamicEntry),
		static:  make(map[string]StaticRoute),
	}

	for _, entry := range routes {
		method, path := parseRouteKey(entry.Key)

		switch route := entry.Config.(type) {
		case DynamicRoute:
			if route.Pricer == nil {
				return nil, &PaymentError{
					Code:    ErrCodeInvalidRoute,
					Message: "dynamic route " + entry.Key + " has no pricing function",
				}
			}
			compiled := dynamicEntry{pattern: path, route: route}
			if strings.HasSuffix(path, "*") {
				compiled.prefix = true
				compiled.pattern = strings.TrimSuffix(path, "*")
			}
			table.dynamic[method] = append(table.dynamic[method], compiled)
		case StaticRoute:
			table.static[entry.Key] = route
		default:
			return nil, &PaymentError{
				Code:    ErrCodeInvalidRoute,
				Message: "route " + entry.Key + " has an unsupported config type",
			}
		}
	}

	return table, nil
}

// hasRoutes reports whether any route, static or dynamic, is configured.
func (t *routeTable) hasRoutes() bool {
	return len(t.dynamic) > 0 || len(t.static) > 0
}

// matchDynamic returns the first dynamic route matching the request, trying
// method-specific entries before wildcard-method entries, each in
// configuration order.
func (t *routeTable) matchDynamic(method, path string) (*dynamicEntry, bool) {
	for i := range t.dynamic[strings.ToUpper(method)] {
		entry := &t.dynamic[strings.ToUpper(method)][i]
		if entry.matches(path) {
			return entry, true
		}
	}
	for i := range t.dynamic[MethodWildcard] {
		entry := &t.dynamic[MethodWildcard][i]
		if entry.matches(path) {
			return entry, true
		}
	}
	return nil, false
}

func (e *dynamicEntry) matches(path string) bool {
	if e.prefix {
		return strings.HasPrefix(path, e.pattern)
	}
	return path == e.pattern
}
