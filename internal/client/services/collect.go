package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

type recordKey struct {
	category syncapi.Category
	localKey int64
}

type mintedID struct {
	recordKey
	id string
}

// minter hands out identifiers for records that do not have one yet. The
// same local record always gets the same identifier within one attempt, so
// embedded snapshots match the top-level record.
type minter struct {
	newID func() string
	ids   map[recordKey]string
	order []mintedID
}

func newMinter(newID func() string) *minter {
	return &minter{newID: newID, ids: make(map[recordKey]string)}
}

func (m *minter) ensure(category syncapi.Category, localKey int64, current string) string {
	if current != "" {
		return current
	}
	k := recordKey{category: category, localKey: localKey}
	if id, ok := m.ids[k]; ok {
		return id
	}
	id := m.newID()
	m.ids[k] = id
	m.order = append(m.order, mintedID{recordKey: k, id: id})
	return id
}

// batch is the collected snapshot of one attempt.
type batch struct {
	data   syncapi.Data
	total  int
	errors []string
	minted []mintedID
}

func (s *SyncService) collect(ctx context.Context) (*batch, error) {
	personnel, err := s.collector.ListPersonnel(ctx)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	owners, err := s.collector.ListOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	incidents, err := s.collector.ListIncidentsWithItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}

	b := &batch{total: len(personnel) + len(owners) + len(incidents)}
	if b.total == 0 {
		return b, nil
	}

	m := newMinter(s.newID)
	sent := make(map[recordKey]bool, b.total)

	for _, p := range personnel {
		p.RecordID = m.ensure(syncapi.CategoryPersonnel, p.LocalKey, p.RecordID)
		w := p.Wire()
		if err := w.Validate(); err != nil {
			b.errors = append(b.errors, fmt.Sprintf("personnel %s: %s", p.RegistrationNumber, syncapi.FormatValidationError(err)))
			continue
		}
		b.data.Personnel = append(b.data.Personnel, w)
		sent[recordKey{syncapi.CategoryPersonnel, p.LocalKey}] = true
	}

	for _, o := range owners {
		o.RecordID = m.ensure(syncapi.CategoryOwners, o.LocalKey, o.RecordID)
		w := o.Wire()
		if err := w.Validate(); err != nil {
			b.errors = append(b.errors, fmt.Sprintf("owner %s: %s", o.Document, syncapi.FormatValidationError(err)))
			continue
		}
		b.data.Owners = append(b.data.Owners, w)
		sent[recordKey{syncapi.CategoryOwners, o.LocalKey}] = true
	}

	for _, inc := range incidents {
		inc.RecordID = m.ensure(syncapi.CategoryIncidents, inc.LocalKey, inc.RecordID)
		inc.Officer.RecordID = m.ensure(syncapi.CategoryPersonnel, inc.Officer.LocalKey, inc.Officer.RecordID)
		for n := range inc.Items {
			owner := &inc.Items[n].Owner
			owner.RecordID = m.ensure(syncapi.CategoryOwners, owner.LocalKey, owner.RecordID)
		}

		w := inc.Wire()
		if err := w.Validate(); err != nil {
			b.errors = append(b.errors, fmt.Sprintf("incident %s: %s", inc.GenesisNumber, syncapi.FormatValidationError(err)))
			continue
		}
		b.data.Incidents = append(b.data.Incidents, w)
		sent[recordKey{syncapi.CategoryIncidents, inc.LocalKey}] = true
	}

	for _, mi := range m.order {
		if sent[mi.recordKey] {
			b.minted = append(b.minted, mi)
		}
	}

	return b, nil
}
