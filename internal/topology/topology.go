package topology

import (
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/config"
	"github.com/GoSim-25-26J-441/mec-simulation-core/pkg/utils"
)

var (
	ErrEmptyTopology  = errors.New("topology has no mdcs")
	ErrMDCNotFound    = errors.New("mdc not found")
	ErrServerNotFound = errors.New("server not found")
	ErrEntityNotFound = errors.New("entity not found")
	ErrDuplicateID    = errors.New("duplicate id")
	ErrNoPath         = errors.New("no path between mdcs")
	ErrSelfLink       = errors.New("mdc links to itself")
)

// NetworkDefaults are the per-tier link characteristics used for intra-MDC
// links and for the Bandwidth/Propagation queries
type NetworkDefaults struct {
	EdgeBandwidth    float64
	CloudBandwidth   float64
	EdgePropagation  float64
	CloudPropagation float64
}

// DefaultNetwork returns the stock edge/cloud link characteristics
func DefaultNetwork() NetworkDefaults {
	return NetworkDefaults{
		EdgeBandwidth:    2000,
		CloudBandwidth:   10000,
		EdgePropagation:  1,
		CloudPropagation: 8,
	}
}

// Topology is an ordered collection of MDCs with id indexes built once at construction
type Topology struct {
	mdcs     []*MDC
	network  NetworkDefaults
	cloudID  string
	byID     map[string]*MDC
	servers  map[string]*Server
	entities map[string]Entity
}

// New builds a topology from mdcs, taking ownership of them. The MDC tagged
// cloud is the cloud tier; when none is tagged the last MDC becomes the cloud
// and every other MDC is edge.
func New(mdcs []*MDC, network NetworkDefaults) (*Topology, error) {
	if len(mdcs) == 0 {
		return nil, ErrEmptyTopology
	}

	t := &Topology{
		mdcs:     mdcs,
		network:  network,
		byID:     make(map[string]*MDC, len(mdcs)),
		servers:  make(map[string]*Server),
		entities: make(map[string]Entity),
	}

	for i, mdc := range mdcs {
		if mdc == nil {
			return nil, fmt.Errorf("mdc at position %d is nil", i)
		}
		if _, dup := t.byID[mdc.ID]; dup {
			return nil, fmt.Errorf("%w: mdc %s", ErrDuplicateID, mdc.ID)
		}
		t.byID[mdc.ID] = mdc

		switch mdc.Tier {
		case TierCloud:
			if t.cloudID != "" {
				return nil, fmt.Errorf("mdcs %s and %s are both tagged cloud", t.cloudID, mdc.ID)
			}
			t.cloudID = mdc.ID
		case TierEdge, "":
		default:
			return nil, fmt.Errorf("mdc %s: unknown tier %q", mdc.ID, mdc.Tier)
		}
	}

	if t.cloudID == "" {
		t.cloudID = mdcs[len(mdcs)-1].ID
	}
	for _, mdc := range mdcs {
		if mdc.ID == t.cloudID {
			mdc.Tier = TierCloud
		} else {
			mdc.Tier = TierEdge
		}
	}

	for _, mdc := range mdcs {
		for _, link := range mdc.Links {
			if link.Neighbor == mdc.ID {
				return nil, fmt.Errorf("mdc %s: %w", mdc.ID, ErrSelfLink)
			}
			if _, ok := t.byID[link.Neighbor]; !ok {
				return nil, fmt.Errorf("mdc %s links to %s: %w", mdc.ID, link.Neighbor, ErrMDCNotFound)
			}
		}
		if err := t.indexEntities(mdc); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Topology) indexEntities(mdc *MDC) error {
	for _, s := range mdc.Servers {
		if s.MDCID == "" {
			s.MDCID = mdc.ID
		} else if s.MDCID != mdc.ID {
			return fmt.Errorf("server %s claims mdc %s but is owned by %s", s.ID, s.MDCID, mdc.ID)
		}
		if err := t.claim(s); err != nil {
			return err
		}
		t.servers[s.ID] = s
	}
	for _, d := range mdc.DataSources {
		d.MDCID = mdc.ID
		if err := t.claim(d); err != nil {
			return err
		}
	}
	for _, u := range mdc.Users {
		u.MDCID = mdc.ID
		if err := t.claim(u); err != nil {
			return err
		}
	}
	return nil
}

func (t *Topology) claim(e Entity) error {
	if _, dup := t.entities[e.EntityID()]; dup {
		return fmt.Errorf("%w: entity %s", ErrDuplicateID, e.EntityID())
	}
	t.entities[e.EntityID()] = e
	return nil
}

// FromConfig builds a topology from scenario MDC descriptors. Zero-valued
// network fields fall back to DefaultNetwork.
func FromConfig(specs []config.MDC, network *config.Network) (*Topology, error) {
	net := DefaultNetwork()
	if network != nil {
		if network.EdgeBandwidth > 0 {
			net.EdgeBandwidth = network.EdgeBandwidth
		}
		if network.CloudBandwidth > 0 {
			net.CloudBandwidth = network.CloudBandwidth
		}
		if network.EdgePropagation > 0 {
			net.EdgePropagation = network.EdgePropagation
		}
		if network.CloudPropagation > 0 {
			net.CloudPropagation = network.CloudPropagation
		}
	}

	mdcs := make([]*MDC, 0, len(specs))
	for _, spec := range specs {
		mdc := &MDC{
			ID:              spec.ID,
			Name:            spec.Name,
			Tier:            Tier(spec.Tier),
			EnergyStored:    spec.Energy.Stored,
			BatteryCapacity: spec.Energy.BatteryCapacity,
			ChargingRate:    spec.Energy.ChargingRate,
		}
		for _, l := range spec.Links {
			mdc.Links = append(mdc.Links, Link{Neighbor: l.To, Bandwidth: l.Bandwidth})
		}
		for _, s := range spec.Servers {
			srv := NewServer(s.ID, s.Name, spec.ID, s.Memory, s.Frequency, s.DeviceFactor)
			if s.Slots > 0 {
				srv.Slots = s.Slots
			}
			if s.Availability != nil {
				if err := srv.SetAvailability(*s.Availability); err != nil {
					return nil, err
				}
			}
			mdc.Servers = append(mdc.Servers, srv)
		}
		for _, d := range spec.DataSources {
			mdc.DataSources = append(mdc.DataSources, &DataSource{ID: d.ID, Name: d.Name, MDCID: spec.ID})
		}
		for _, u := range spec.Users {
			mdc.Users = append(mdc.Users, &UserDevice{ID: u.ID, Name: u.Name, MDCID: spec.ID})
		}
		mdcs = append(mdcs, mdc)
	}

	return New(mdcs, net)
}

// MDCs returns the MDCs in declaration order
func (t *Topology) MDCs() []*MDC {
	out := make([]*MDC, len(t.mdcs))
	copy(out, t.mdcs)
	return out
}

// Network returns the link defaults the topology was built with
func (t *Topology) Network() NetworkDefaults {
	return t.network
}

// CloudID returns the id of the cloud-tier MDC
func (t *Topology) CloudID() string {
	return t.cloudID
}

// IsCloud reports whether mdcID names the cloud-tier MDC
func (t *Topology) IsCloud(mdcID string) bool {
	return mdcID == t.cloudID
}

// FindMDC looks up an MDC by id
func (t *Topology) FindMDC(id string) (*MDC, bool) {
	mdc, ok := t.byID[id]
	return mdc, ok
}

// FindServer looks up a server by id
func (t *Topology) FindServer(id string) (*Server, bool) {
	s, ok := t.servers[id]
	return s, ok
}

// FindEntity looks up a server, data source or user device by id
func (t *Topology) FindEntity(id string) (Entity, bool) {
	e, ok := t.entities[id]
	return e, ok
}

// Links returns the declared adjacency of an MDC
func (t *Topology) Links(mdcID string) ([]Link, error) {
	mdc, ok := t.byID[mdcID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMDCNotFound, mdcID)
	}
	return mdc.Links, nil
}

// TierOf returns the tier of the MDC owning the server
func (t *Topology) TierOf(serverID string) (Tier, bool) {
	s, ok := t.servers[serverID]
	if !ok {
		return "", false
	}
	return t.byID[s.MDCID].Tier, true
}

// Bandwidth returns the default bandwidth between two MDCs: the cloud value
// if either side is the cloud tier, the edge value otherwise. Declared link
// bandwidths are only used when flattening.
func (t *Topology) Bandwidth(a, b string) float64 {
	if t.IsCloud(a) || t.IsCloud(b) {
		return t.network.CloudBandwidth
	}
	return t.network.EdgeBandwidth
}

// Propagation returns the default propagation delay between two MDCs
func (t *Topology) Propagation(a, b string) float64 {
	if t.IsCloud(a) || t.IsCloud(b) {
		return t.network.CloudPropagation
	}
	return t.network.EdgePropagation
}

// tierDefaults returns the bandwidth and propagation used inside an MDC
func (t *Topology) tierDefaults(mdc *MDC) (float64, float64) {
	if mdc.Tier == TierCloud {
		return t.network.CloudBandwidth, t.network.CloudPropagation
	}
	return t.network.EdgeBandwidth, t.network.EdgePropagation
}

// AddUserDevice attaches a user device to an existing MDC
func (t *Topology) AddUserDevice(u *UserDevice, mdcID string) error {
	mdc, ok := t.byID[mdcID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMDCNotFound, mdcID)
	}
	if err := t.claim(u); err != nil {
		return err
	}
	mdc.AddUser(u)
	return nil
}

// AddDataSource attaches a data source to an existing MDC
func (t *Topology) AddDataSource(d *DataSource, mdcID string) error {
	mdc, ok := t.byID[mdcID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMDCNotFound, mdcID)
	}
	if err := t.claim(d); err != nil {
		return err
	}
	mdc.AddDataSource(d)
	return nil
}

// LocateServer returns the id of the MDC owning a server
func (t *Topology) LocateServer(id string) (string, error) {
	s, ok := t.servers[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrServerNotFound, id)
	}
	return s.MDCID, nil
}

// LocateDataSource returns the id of the MDC a data source is located at
func (t *Topology) LocateDataSource(id string) (string, error) {
	if d, ok := t.entities[id].(*DataSource); ok {
		return d.MDCID, nil
	}
	return "", fmt.Errorf("%w: data source %s", ErrEntityNotFound, id)
}

// LocateUserDevice returns the id of the MDC a user device is attached to
func (t *Topology) LocateUserDevice(id string) (string, error) {
	if u, ok := t.entities[id].(*UserDevice); ok {
		return u.MDCID, nil
	}
	return "", fmt.Errorf("%w: user device %s", ErrEntityNotFound, id)
}

// Servers returns every server, MDC by MDC in declaration order
func (t *Topology) Servers() []*Server {
	var out []*Server
	for _, mdc := range t.mdcs {
		out = append(out, mdc.Servers...)
	}
	return out
}

// Averages returns the mean declared link bandwidth and the mean server frequency
func (t *Topology) Averages() (linkBandwidth, frequency float64, err error) {
	var bandwidths, frequencies []float64
	for _, mdc := range t.mdcs {
		for _, l := range mdc.Links {
			bandwidths = append(bandwidths, l.Bandwidth)
		}
		for _, s := range mdc.Servers {
			frequencies = append(frequencies, s.Frequency)
		}
	}
	if len(bandwidths) == 0 || len(frequencies) == 0 {
		return 0, 0, fmt.Errorf("averages need at least one link and one server, got %d links and %d servers", len(bandwidths), len(frequencies))
	}
	return utils.Mean(bandwidths), utils.Mean(frequencies), nil
}

// Clone returns a deep copy of the topology with fresh indexes
func (t *Topology) Clone() *Topology {
	mdcs := make([]*MDC, len(t.mdcs))
	for i, mdc := range t.mdcs {
		mdcs[i] = mdc.Clone()
	}
	c, err := New(mdcs, t.network)
	if err != nil {
		// The source topology passed the same validation
		panic(fmt.Sprintf("topology: clone of a valid topology failed: %v", err))
	}
	return c
}
