package topology

import "fmt"

// Entity is anything addressable by id inside an MDC
type Entity interface {
	EntityID() string
	Location() string
}

// Server is a compute server owned by an MDC
type Server struct {
	ID           string
	MDCID        string
	Name         string
	Memory       float64
	Frequency    float64
	DeviceFactor float64
	Slots        int
	Availability float64 // 0.0 to 1.0
}

// NewServer creates a server with one slot and full availability
func NewServer(id, name, mdcID string, memory, frequency, deviceFactor float64) *Server {
	return &Server{
		ID:           id,
		MDCID:        mdcID,
		Name:         name,
		Memory:       memory,
		Frequency:    frequency,
		DeviceFactor: deviceFactor,
		Slots:        1,
		Availability: 1.0,
	}
}

// EntityID returns the server id
func (s *Server) EntityID() string { return s.ID }

// Location returns the owning MDC id
func (s *Server) Location() string { return s.MDCID }

// DebitMemory subtracts amount from the server's remaining memory.
// The result may go negative; callers that need admission control check first.
func (s *Server) DebitMemory(amount float64) {
	s.Memory -= amount
}

// SetSlots updates the slot count
func (s *Server) SetSlots(slots int) error {
	if slots < 1 {
		return fmt.Errorf("server %s: slots must be at least 1, got %d", s.ID, slots)
	}
	s.Slots = slots
	return nil
}

// SetAvailability updates the availability fraction
func (s *Server) SetAvailability(availability float64) error {
	if availability < 0 || availability > 1 {
		return fmt.Errorf("server %s: availability must be between 0 and 1, got %f", s.ID, availability)
	}
	s.Availability = availability
	return nil
}

func (s *Server) String() string {
	return fmt.Sprintf("<Server id=%s, name=%s>", s.ID, s.Name)
}

// UserDevice is a user endpoint attached to an MDC
type UserDevice struct {
	ID    string
	Name  string
	MDCID string
}

// EntityID returns the user device id
func (u *UserDevice) EntityID() string { return u.ID }

// Location returns the MDC the device is attached to
func (u *UserDevice) Location() string { return u.MDCID }

// DataSource is a data producer located at an MDC
type DataSource struct {
	ID    string
	Name  string
	MDCID string
}

// EntityID returns the data source id
func (d *DataSource) EntityID() string { return d.ID }

// Location returns the MDC the source is located at
func (d *DataSource) Location() string { return d.MDCID }
