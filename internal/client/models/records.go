package models

import (
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

// DateLayout is the wire and storage format of incident dates.
const DateLayout = "2006-01-02"

type Personnel struct {
	LocalKey           int64
	RecordID           string
	Name               string
	RegistrationNumber string
	Rank               string
	Unit               string
}

func (p Personnel) Wire() syncapi.Personnel {
	return syncapi.Personnel{
		RecordID:           p.RecordID,
		Name:               p.Name,
		RegistrationNumber: p.RegistrationNumber,
		Rank:               p.Rank,
		Unit:               p.Unit,
	}
}

type Owner struct {
	LocalKey int64
	RecordID string
	Name     string
	Document string
}

func (o Owner) Wire() syncapi.Owner {
	return syncapi.Owner{RecordID: o.RecordID, Name: o.Name, Document: o.Document}
}

// Item is a seized item. Owner is loaded in full so the incident can carry
// an owner snapshot on the wire.
type Item struct {
	LocalKey    int64
	Species     string
	Name        string
	Quantity    int
	Description string
	Owner       Owner
}

func (i Item) Wire() syncapi.Item {
	return syncapi.Item{
		Species:     i.Species,
		Name:        i.Name,
		Quantity:    i.Quantity,
		Description: i.Description,
		Owner:       i.Owner.Wire(),
	}
}

type Incident struct {
	LocalKey      int64
	RecordID      string
	GenesisNumber string
	Unit          string
	SeizureDate   time.Time
	Law           string
	Article       string
	Officer       Personnel
	Items         []Item
}

func (i Incident) Wire() syncapi.Incident {
	items := make([]syncapi.Item, 0, len(i.Items))
	for _, it := range i.Items {
		items = append(items, it.Wire())
	}
	return syncapi.Incident{
		RecordID:      i.RecordID,
		GenesisNumber: i.GenesisNumber,
		Unit:          i.Unit,
		SeizureDate:   i.SeizureDate.Format(DateLayout),
		Law:           i.Law,
		Article:       i.Article,
		Officer:       i.Officer.Wire(),
		Items:         items,
	}
}
