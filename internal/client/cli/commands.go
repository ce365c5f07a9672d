package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/secrimpo/internal/client/models"
	"github.com/dmitrijs2005/secrimpo/internal/client/report"
)

func (a *App) SetUser(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if u := a.users.User(ctx); u != "" {
			a.println("Sync user:", u)
		} else {
			a.println("No sync user set. Usage: user <name>")
		}
		return nil
	}

	if err := a.users.SetUser(ctx, strings.Join(args, " ")); err != nil {
		a.println("Error:", err)
		return err
	}
	a.println("Sync user set to", a.users.User(ctx))
	return nil
}

func (a *App) Online(ctx context.Context) error {
	if a.monitor.CheckNow(ctx) {
		a.println("Server is reachable")
	} else {
		a.println("Server is unreachable")
	}
	return nil
}

func (a *App) AddOfficer(ctx context.Context) error {
	p, err := a.readOfficer()
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if err := a.records.AddPersonnel(ctx, &p); err != nil {
		a.println("Error saving officer:", err)
		return err
	}
	a.println("Officer saved locally")
	return nil
}

func (a *App) readOfficer() (models.Personnel, error) {
	var p models.Personnel
	var err error
	if p.Name, err = GetRequiredText(a.reader, "Name", a.out); err != nil {
		return p, err
	}
	if p.RegistrationNumber, err = GetRequiredText(a.reader, "Registration number", a.out); err != nil {
		return p, err
	}
	if p.Rank, err = GetRequiredText(a.reader, "Rank", a.out); err != nil {
		return p, err
	}
	if p.Unit, err = GetRequiredText(a.reader, "Unit", a.out); err != nil {
		return p, err
	}
	return p, nil
}

func (a *App) AddOwner(ctx context.Context) error {
	var o models.Owner
	var err error
	if o.Name, err = GetRequiredText(a.reader, "Owner name", a.out); err == nil {
		o.Document, err = GetRequiredText(a.reader, "Document", a.out)
	}
	if err != nil {
		a.println("Error:", err)
		return err
	}

	if err := a.records.AddOwner(ctx, &o); err != nil {
		a.println("Error saving owner:", err)
		return err
	}
	a.println("Owner saved locally")
	return nil
}

func (a *App) AddIncident(ctx context.Context) error {
	inc, err := a.readIncident(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	if err := a.records.AddIncident(ctx, &inc); err != nil {
		a.println("Error saving incident:", err)
		return err
	}
	a.println(fmt.Sprintf("Incident saved locally with %d item(s)", len(inc.Items)))
	return nil
}

func (a *App) readIncident(ctx context.Context) (models.Incident, error) {
	var inc models.Incident
	var err error

	if inc.GenesisNumber, err = GetRequiredText(a.reader, "Genesis number", a.out); err != nil {
		return inc, err
	}
	if inc.Unit, err = GetRequiredText(a.reader, "Unit of occurrence", a.out); err != nil {
		return inc, err
	}
	if inc.SeizureDate, err = GetDate(a.reader, "Seizure date", a.out); err != nil {
		return inc, err
	}
	if inc.Law, err = GetRequiredText(a.reader, "Law", a.out); err != nil {
		return inc, err
	}
	if inc.Article, err = GetRequiredText(a.reader, "Article", a.out); err != nil {
		return inc, err
	}

	reg, err := GetRequiredText(a.reader, "Registration number of the officer in charge", a.out)
	if err != nil {
		return inc, err
	}
	if inc.Officer, err = a.findOfficer(ctx, reg); err != nil {
		return inc, err
	}

	for {
		more, err := Confirm(a.reader, "Add a seized item?", a.out)
		if err != nil {
			return inc, err
		}
		if !more {
			break
		}
		it, err := a.readItem(ctx)
		if err != nil {
			return inc, err
		}
		inc.Items = append(inc.Items, it)
	}

	return inc, nil
}

func (a *App) readItem(ctx context.Context) (models.Item, error) {
	var it models.Item
	var err error
	if it.Species, err = GetRequiredText(a.reader, "Species", a.out); err != nil {
		return it, err
	}
	if it.Name, err = GetRequiredText(a.reader, "Item", a.out); err != nil {
		return it, err
	}
	if it.Quantity, err = GetPositiveInt(a.reader, "Quantity", a.out); err != nil {
		return it, err
	}
	if it.Description, err = GetRequiredText(a.reader, "Detailed description", a.out); err != nil {
		return it, err
	}
	doc, err := GetRequiredText(a.reader, "Owner document", a.out)
	if err != nil {
		return it, err
	}
	it.Owner, err = a.findOwner(ctx, doc)
	return it, err
}

func (a *App) findOfficer(ctx context.Context, registration string) (models.Personnel, error) {
	list, err := a.records.ListPersonnel(ctx)
	if err != nil {
		return models.Personnel{}, err
	}
	for _, p := range list {
		if strings.EqualFold(p.RegistrationNumber, registration) {
			return p, nil
		}
	}
	return models.Personnel{}, fmt.Errorf("no officer with registration %q, add it with addofficer", registration)
}

func (a *App) findOwner(ctx context.Context, document string) (models.Owner, error) {
	list, err := a.records.ListOwners(ctx)
	if err != nil {
		return models.Owner{}, err
	}
	for _, o := range list {
		if o.Document == document {
			return o, nil
		}
	}
	return models.Owner{}, fmt.Errorf("no owner with document %q, add it with addowner", document)
}

func (a *App) List(ctx context.Context) error {
	personnel, err := a.records.ListPersonnel(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	owners, err := a.records.ListOwners(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	incidents, err := a.records.ListIncidentsWithItems(ctx)
	if err != nil {
		a.println("Error:", err)
		return err
	}

	a.println(fmt.Sprintf("Officers (%d)", len(personnel)))
	for _, p := range personnel {
		a.println(fmt.Sprintf("  [%s] %s %s, %s, %s", sentMark(p.RecordID), p.RegistrationNumber, p.Name, p.Rank, p.Unit))
	}
	a.println(fmt.Sprintf("Owners (%d)", len(owners)))
	for _, o := range owners {
		a.println(fmt.Sprintf("  [%s] %s %s", sentMark(o.RecordID), o.Document, o.Name))
	}
	a.println(fmt.Sprintf("Incidents (%d)", len(incidents)))
	for _, inc := range incidents {
		a.println(fmt.Sprintf("  [%s] %s %s %s art. %s, officer %s, %d item(s)",
			sentMark(inc.RecordID), inc.GenesisNumber, inc.SeizureDate.Format(models.DateLayout),
			inc.Law, inc.Article, inc.Officer.RegistrationNumber, len(inc.Items)))
	}
	return nil
}

func sentMark(recordID string) string {
	if recordID == "" {
		return "local"
	}
	return "sent"
}

func (a *App) Sync(ctx context.Context) error {
	a.println("Synchronizing...")
	res, err := a.syncer.Sync(ctx)
	if err != nil {
		a.println(report.FormatError(err))
		return err
	}
	a.println(report.Detailed(*res))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if last, ok := a.syncer.LastSync(ctx); ok {
		a.println("Last successful sync:", last.Local().Format(time.DateTime))
	} else {
		a.println("This client has never synchronized")
	}
	a.println("Sync state:", a.syncer.Phase().String())

	st, err := a.syncer.Status(ctx)
	if err != nil {
		a.println(report.FormatError(err))
		return err
	}

	a.println(fmt.Sprintf("Server: %d syncs, %d records, last status %q", st.TotalSyncs, st.TotalSyncedRecord, st.LastSyncStatus))
	if st.LastSync != nil {
		a.println("Server last sync:", st.LastSync.Local().Format(time.DateTime))
	}
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	limit := a.config.HistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			a.println("Usage: history [n]")
			return fmt.Errorf("invalid limit %q", args[0])
		}
		limit = n
	}

	entries, err := a.syncer.History(ctx, limit)
	if err != nil {
		a.println(report.FormatError(err))
		return err
	}
	if len(entries) == 0 {
		a.println("No sync history")
		return nil
	}
	for _, e := range entries {
		a.println(fmt.Sprintf("#%d %s %-8s %d records (%d new, %d duplicate)",
			e.ID, e.Timestamp.Local().Format(time.DateTime), e.Status, e.Total, e.New, e.Duplicate))
	}
	return nil
}
