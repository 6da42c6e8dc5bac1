package topology

// Tier classifies an MDC for default bandwidth and propagation selection
type Tier string

const (
	TierEdge  Tier = "edge"
	TierCloud Tier = "cloud"
)

// Link is a declared adjacency entry. Declarations are one-sided: a link from
// A to B does not imply the reverse entry on B.
type Link struct {
	Neighbor  string
	Bandwidth float64
}

// MDC is a micro-data-center holding servers, data sources and user devices
type MDC struct {
	ID          string
	Name        string
	Tier        Tier // empty means unset; resolved when the topology is built
	Links       []Link
	Servers     []*Server
	DataSources []*DataSource
	Users       []*UserDevice

	// Energy state is carried for scenario tooling and not interpreted here
	EnergyStored    float64
	BatteryCapacity float64
	ChargingRate    float64
}

// AddUser attaches a user device to the MDC
func (m *MDC) AddUser(u *UserDevice) {
	u.MDCID = m.ID
	m.Users = append(m.Users, u)
}

// AddDataSource attaches a data source to the MDC
func (m *MDC) AddDataSource(d *DataSource) {
	d.MDCID = m.ID
	m.DataSources = append(m.DataSources, d)
}

// Clone returns a deep copy. The copy shares no mutable state with m.
func (m *MDC) Clone() *MDC {
	c := *m

	c.Links = append([]Link(nil), m.Links...)

	c.Servers = make([]*Server, len(m.Servers))
	for i, s := range m.Servers {
		srv := *s
		c.Servers[i] = &srv
	}

	c.DataSources = make([]*DataSource, len(m.DataSources))
	for i, d := range m.DataSources {
		ds := *d
		c.DataSources[i] = &ds
	}

	c.Users = make([]*UserDevice, len(m.Users))
	for i, u := range m.Users {
		ud := *u
		c.Users[i] = &ud
	}

	return &c
}
