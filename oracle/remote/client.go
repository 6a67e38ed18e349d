package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/oracle"
)

// Defaults for how much context a request carries.
const (
	defaultResourceLimit = 4
	defaultNeighborLimit = 8
)

// Client is an oracle.Oracle that asks a remote decision service. Every
// failure is reported as oracle.ErrUnavailable so the simulation falls back
// to wandering for that agent.
type Client struct {
	hc      *client.Client
	url     string
	timeout time.Duration

	radius        float32
	reach         float32
	resourceLimit int
	neighborLimit int
}

var _ oracle.Oracle = (*Client)(nil)

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, cfg *config.Config) (*Client, error) {
	timeout := time.Duration(cfg.Oracle.RemoteTimeoutMS) * time.Millisecond
	hc, err := client.NewClient(client.WithDialTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{
		hc:            hc,
		url:           strings.TrimRight(baseURL, "/") + DecidePath,
		timeout:       timeout,
		radius:        float32(cfg.Oracle.SearchRadius),
		reach:         float32(cfg.Consumption.InteractRange),
		resourceLimit: defaultResourceLimit,
		neighborLimit: defaultNeighborLimit,
	}, nil
}

// Decide implements oracle.Oracle.
func (c *Client) Decide(id components.AgentID, needs oracle.NeedsSnapshot, energy oracle.EnergySnapshot, q oracle.WorldQuery) (oracle.Intent, error) {
	body, err := json.Marshal(c.request(id, needs, energy, q))
	if err != nil {
		return oracle.Intent{}, fmt.Errorf("%w: encode request: %v", oracle.ErrUnavailable, err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.url)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	if err := c.hc.DoTimeout(context.Background(), req, resp, c.timeout); err != nil {
		return oracle.Intent{}, fmt.Errorf("%w: %v", oracle.ErrUnavailable, err)
	}
	return decodeResponse(resp.StatusCode(), resp.Body())
}

// request gathers the agent's surroundings from the live world query.
func (c *Client) request(id components.AgentID, needs oracle.NeedsSnapshot, energy oracle.EnergySnapshot, q oracle.WorldQuery) DecideRequest {
	req := DecideRequest{
		AgentID: id,
		Needs:   needs,
		Energy:  energy,
		Context: Surroundings{Radius: c.radius},
	}
	req.Context.Water = c.nearest(q, oracle.Water)
	req.Context.Forage = c.nearest(q, oracle.Forage)
	req.Context.Prey = c.nearest(q, oracle.Prey)

	species := make(map[components.AgentID]components.Species)
	for s := components.Species(0); s < components.NumSpecies; s++ {
		for _, other := range q.NearbyAgents(c.neighborLimit, c.radius, &s) {
			species[other] = s
		}
	}
	for _, other := range q.NearbyAgents(c.neighborLimit, c.radius, nil) {
		req.Context.Neighbors = append(req.Context.Neighbors, Neighbor{
			ID:      other,
			Species: species[other],
			InReach: q.CanInteract(id, other, c.reach),
		})
	}
	return req
}

func (c *Client) nearest(q oracle.WorldQuery, kind oracle.ResourceKind) []oracle.ResourceLocation {
	locs := q.NearbyResources(kind, c.radius)
	if len(locs) > c.resourceLimit {
		locs = locs[:c.resourceLimit]
	}
	return locs
}

func decodeResponse(status int, body []byte) (oracle.Intent, error) {
	if status != consts.StatusOK {
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error.Code != "" {
			return oracle.Intent{}, fmt.Errorf("%w: status %d: %s", oracle.ErrUnavailable, status, eb.Error.Code)
		}
		return oracle.Intent{}, fmt.Errorf("%w: status %d", oracle.ErrUnavailable, status)
	}
	var out DecideResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return oracle.Intent{}, fmt.Errorf("%w: decode response: %v", oracle.ErrUnavailable, err)
	}
	return out.Intent, nil
}
