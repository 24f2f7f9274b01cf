package catalog

// PestID identifies a pest the classifier knows about.
type PestID string

const (
	GusanoCogollero PestID = "gusano_cogollero"
	MoscaBlanca     PestID = "mosca_blanca"
	RoyaDelCafe     PestID = "roya_del_cafe"
	Pulgon          PestID = "pulgon"
	Nematodos       PestID = "nematodos"
	TaladroDelArroz PestID = "taladro_del_arroz"
	PicudoDelTabaco PestID = "picudo_del_tabaco"
	MohoGris        PestID = "moho_gris"
)

// Severity grades how damaging a pest is.
type Severity string

const (
	SeverityHigh   Severity = "alta"
	SeverityMedium Severity = "media"
	SeverityLow    Severity = "baja"
)

// Label is the human readable badge text.
func (s Severity) Label() string {
	switch s {
	case SeverityHigh:
		return "Alta"
	case SeverityMedium:
		return "Media"
	default:
		return "Baja"
	}
}

// Color is the accent colour used for result cards.
func (s Severity) Color() string {
	switch s {
	case SeverityHigh:
		return "#ef4444"
	case SeverityMedium:
		return "#f59e0b"
	default:
		return "#10b981"
	}
}

// Record is everything the catalog knows about one pest.
type Record struct {
	ID          PestID   `yaml:"id" json:"id,omitempty"`
	Name        string   `yaml:"name" json:"name"`
	Scientific  string   `yaml:"scientific" json:"scientific"`
	Description string   `yaml:"description" json:"description"`
	Remedies    []string `yaml:"remedies" json:"remedies"`
	Severity    Severity `yaml:"severity" json:"severity"`
}

var defaultRecord = Record{
	Scientific:  "Nombre científico no disponible",
	Description: "Descripción no disponible para esta plaga.",
	Remedies: []string{
		"Inspeccionar regularmente las plantas en horas de la mañana",
		"Aplicar soluciones biológicas cada 7-10 días",
		"Eliminar plantas muy afectadas para evitar propagación",
	},
	Severity: SeverityMedium,
}

var builtinRecords = []Record{
	{
		ID:          GusanoCogollero,
		Name:        "Gusano cogollero",
		Scientific:  "Spodoptera frugiperda",
		Description: "Plaga común en maíz que ataca las hojas jóvenes y el cogollo. Se observan daños en forma de mordeduras irregulares.",
		Remedies: []string{
			"Aplicar solución de ceniza de tabaco (1kg por 10L de agua)",
			"Introducir enemigos naturales como trichogramma",
			"Rotar cultivos con leguminosas",
		},
		Severity: SeverityHigh,
	},
	{
		ID:          MoscaBlanca,
		Name:        "Mosca blanca",
		Scientific:  "Bemisia tabaci",
		Description: "Insecto pequeño que afecta múltiples cultivos transmitiendo virus. Se observan colonias en el envés de las hojas.",
		Remedies: []string{
			"Usar trampas amarillas adhesivas",
			"Aplicar jabón potásico (20g por litro de agua)",
			"Introducir parasitoides como Encarsia formosa",
		},
		Severity: SeverityMedium,
	},
	{
		ID:          RoyaDelCafe,
		Name:        "Roya del café",
		Scientific:  "Hemileia vastatrix",
		Description: "Hongo que afecta las hojas del café reduciendo la producción. Manchas anaranjadas en el envés de las hojas.",
		Remedies: []string{
			"Podar para mejorar la ventilación",
			"Aplicar caldo bordelés (1%) preventivamente",
			"Usar variedades resistentes",
		},
		Severity: SeverityHigh,
	},
	{
		ID:          Pulgon,
		Name:        "Pulgón",
		Scientific:  "Aphidoidea",
		Description: "Insecto chupador que afecta múltiples cultivos y transmite virus. Se observan colonias en brotes tiernos.",
		Remedies: []string{
			"Aplicar jabón potásico (200g por 10L de agua)",
			"Usar extracto de ajo y cebolla",
			"Fomentar la presencia de mariquitas",
		},
		Severity: SeverityMedium,
	},
	{
		ID:          Nematodos,
		Name:        "Nemátodos",
		Scientific:  "Nematoda",
		Description: "Gusanos microscópicos que afectan las raíces de las plantas. Plantas con crecimiento raquítico y amarillamiento.",
		Remedies: []string{
			"Solarización del suelo (cubrir con plástico transparente)",
			"Rotación con cultivos no hospederos como maíz",
			"Aplicar compost para mejorar salud del suelo",
		},
		Severity: SeverityHigh,
	},
	{
		ID:          TaladroDelArroz,
		Name:        "Taladro del arroz",
		Scientific:  "Chilo plejadellus",
		Description: "Insecto que perfora el tallo del arroz causando su muerte. Tallos con orificios y material fecal.",
		Remedies: []string{
			"Eliminar restos de cosecha anteriores",
			"Mantener nivel de agua adecuado en el cultivo",
			"Usar trampas de feromonas",
		},
		Severity: SeverityHigh,
	},
	{
		ID:          PicudoDelTabaco,
		Name:        "Picudo del tabaco",
		Scientific:  "Anthonomus grandis",
		Description: "Escarabajo que afecta los botones florales del tabaco. Botones florales perforados y dañados.",
		Remedies: []string{
			"Recolección manual de adultos",
			"Eliminar botones florales afectados",
			"Rotación con cultivos no hospederos",
		},
		Severity: SeverityMedium,
	},
	{
		ID:          MohoGris,
		Name:        "Moho gris",
		Scientific:  "Botrytis cinerea",
		Description: "Hongo que afecta flores y frutos en condiciones de humedad. Apariencia de moho grisáceo en tejidos afectados.",
		Remedies: []string{
			"Reducir densidad de plantación para mejorar ventilación",
			"Evitar riego por aspersión en horas de la tarde",
			"Aplicar bicarbonato de sodio (5g por litro)",
		},
		Severity: SeverityMedium,
	},
}
