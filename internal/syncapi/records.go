package syncapi

// Category names one of the three synchronized record collections. The
// value is the JSON key used inside Envelope.Data and Response.Summary.
type Category string

const (
	CategoryPersonnel Category = "policiais"
	CategoryOwners    Category = "proprietarios"
	CategoryIncidents Category = "ocorrencias"
)

// Categories lists every category in envelope order.
var Categories = []Category{CategoryPersonnel, CategoryOwners, CategoryIncidents}

// Kind is the singular record type stored in the server's dedup ledger.
func (c Category) Kind() string {
	switch c {
	case CategoryPersonnel:
		return "policial"
	case CategoryOwners:
		return "proprietario"
	case CategoryIncidents:
		return "ocorrencia"
	default:
		return string(c)
	}
}

// Personnel is a police officer record.
type Personnel struct {
	RecordID           string `json:"uuid_local" validate:"required,uuid4"`
	Name               string `json:"nome" validate:"required"`
	RegistrationNumber string `json:"matricula" validate:"required,alphanum"`
	Rank               string `json:"graduacao" validate:"required"`
	Unit               string `json:"unidade" validate:"required"`
}

func (p Personnel) Validate() error { return validate.Struct(p) }

// Owner is the owner of one or more seized items.
type Owner struct {
	RecordID string `json:"uuid_local" validate:"required,uuid4"`
	Name     string `json:"nome" validate:"required"`
	Document string `json:"documento" validate:"required,min=5"`
}

func (o Owner) Validate() error { return validate.Struct(o) }

// Item is a seized item. It only travels nested inside an Incident and
// carries a snapshot of its owner.
type Item struct {
	Species     string `json:"especie" validate:"required"`
	Name        string `json:"item" validate:"required"`
	Quantity    int    `json:"quantidade" validate:"gt=0"`
	Description string `json:"descricao_detalhada" validate:"required"`
	Owner       Owner  `json:"proprietario"`
}

// Incident is a seizure report. Officer and Items are denormalized
// snapshots taken at export time, not live references.
type Incident struct {
	RecordID      string    `json:"uuid_local" validate:"required,uuid4"`
	GenesisNumber string    `json:"numero_genesis" validate:"required"`
	Unit          string    `json:"unidade_fato" validate:"required"`
	SeizureDate   string    `json:"data_apreensao" validate:"required,datetime=2006-01-02"`
	Law           string    `json:"lei_infringida" validate:"required"`
	Article       string    `json:"artigo" validate:"required"`
	Officer       Personnel `json:"policial_condutor"`
	Items         []Item    `json:"itens_apreendidos" validate:"dive"`
}

func (i Incident) Validate() error { return validate.Struct(i) }
