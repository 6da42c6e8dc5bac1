package topology

import "github.com/GoSim-25-26J-441/mec-simulation-core/pkg/logger"

// EntityTag identifies the role of a flattened entity
type EntityTag string

const (
	TagGateway     EntityTag = "gw"
	TagBaseStation EntityTag = "bs"
	TagServer      EntityTag = "server"
	TagDataSource  EntityTag = "ds"
	TagUser        EntityTag = "user"
)

// FlatEntity is one node of the simulator topology
type FlatEntity struct {
	ID    int       `json:"id"`
	Model string    `json:"model"`
	Tag   EntityTag `json:"mytag"`
	IPT   float64   `json:"IPT"`
	RAM   float64   `json:"RAM"`
	Cost  float64   `json:"COST"`
	Watt  float64   `json:"WATT"`
	Slots int       `json:"slot,omitempty"`
}

// FlatLink is one undirected simulator link
type FlatLink struct {
	Src         int     `json:"s"`
	Dst         int     `json:"d"`
	Bandwidth   float64 `json:"BW"`
	Propagation float64 `json:"PR"`
}

// FlatTopology is the simulator-ready form of a Topology
type FlatTopology struct {
	Entities []FlatEntity `json:"entity"`
	Links    []FlatLink   `json:"link"`

	// EntityNames maps entity ids back to domain ids. Gateways map to their
	// MDC id, base stations to their model name.
	EntityNames map[int]string `json:"-"`
	// ServerEntities maps server ids to entity ids
	ServerEntities map[string]int `json:"-"`
}

// Entity returns the flattened entity with the given id
func (f *FlatTopology) Entity(id int) (FlatEntity, bool) {
	if id < 0 || id >= len(f.Entities) {
		return FlatEntity{}, false
	}
	return f.Entities[id], true
}

type flattener struct {
	out *FlatTopology
}

func (f *flattener) emit(model string, tag EntityTag, domainID string) *FlatEntity {
	id := len(f.out.Entities)
	f.out.Entities = append(f.out.Entities, FlatEntity{ID: id, Model: model, Tag: tag})
	f.out.EntityNames[id] = domainID
	return &f.out.Entities[id]
}

func (f *flattener) link(src, dst int, bandwidth, propagation float64) {
	f.out.Links = append(f.out.Links, FlatLink{Src: src, Dst: dst, Bandwidth: bandwidth, Propagation: propagation})
}

// Flatten converts the topology into dense zero-based entities and links.
// Per MDC in order it emits a gateway, a base station, the servers, the data
// sources and the user devices; inter-MDC gateway links follow, one per
// unordered MDC pair, carrying the declared bandwidth and the propagation of
// the declaring MDC's tier.
func (t *Topology) Flatten() *FlatTopology {
	f := &flattener{out: &FlatTopology{
		EntityNames:    make(map[int]string),
		ServerEntities: make(map[string]int),
	}}
	gateways := make(map[string]int, len(t.mdcs))

	for _, mdc := range t.mdcs {
		bw, pr := t.tierDefaults(mdc)

		gw := f.emit(mdc.ID+"_gw", TagGateway, mdc.ID).ID
		gateways[mdc.ID] = gw

		bsModel := mdc.ID + "_bs"
		bs := f.emit(bsModel, TagBaseStation, bsModel).ID
		f.link(gw, bs, bw, pr)

		for _, s := range mdc.Servers {
			e := f.emit(s.ID, TagServer, s.ID)
			e.IPT = s.Frequency
			e.RAM = s.Memory
			e.Slots = s.Slots
			f.out.ServerEntities[s.ID] = e.ID
			f.link(gw, e.ID, bw, 0)
		}
		for _, d := range mdc.DataSources {
			id := f.emit(d.ID, TagDataSource, d.ID).ID
			f.link(gw, id, bw, 0)
		}
		for _, u := range mdc.Users {
			id := f.emit(u.ID, TagUser, u.ID).ID
			f.link(bs, id, bw, 0)
		}
	}

	type pair struct{ lo, hi int }
	linked := make(map[pair]bool)
	for _, mdc := range t.mdcs {
		src := gateways[mdc.ID]
		_, pr := t.tierDefaults(mdc)
		for _, l := range mdc.Links {
			dst := gateways[l.Neighbor]
			p := pair{src, dst}
			if dst < src {
				p = pair{dst, src}
			}
			if linked[p] {
				continue
			}
			linked[p] = true
			f.link(src, dst, l.Bandwidth, pr)
		}
	}

	logger.Debug("topology flattened",
		"mdcs", len(t.mdcs),
		"entities", len(f.out.Entities),
		"links", len(f.out.Links))

	return f.out
}
