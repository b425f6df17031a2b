// Package seed fills an empty store with the admin account and the demo
// catalog on first start.
package seed

import (
	"fmt"
	"strings"

	"cicli-volante/internal/domain"

	"github.com/shopspring/decimal"
)

type bikeModel struct {
	name    string
	motor   string
	battery int
	desc    string
}

var bikeModels = []bikeModel{
	{"Specialized Turbo Levo Pro", "Bosch Performance Line CX", 700, "La regina delle mountain bike elettriche, potenza senza compromessi per i sentieri più impegnativi."},
	{"Orbea Wild FS M-Team", "Bosch Performance CX", 625, "Una macchina da enduro progettata per dominare ogni discesa con agilità e forza."},
	{"Cannondale Adventure Neo 3", "Bosch Active Line Plus", 400, "Perfetta per gli spostamenti urbani quotidiani con il massimo comfort e stile."},
	{"Trek Rail 9.8", "Bosch Performance CX", 750, "Progettata per affrontare i terreni più accidentati con facilità estrema."},
	{"Specialized Turbo Vado 4.0", "Specialized 2.0 (70Nm)", 710, "La bici perfetta per la vita in città, fluida, silenziosa e incredibilmente potente."},
	{"Riese & Müller Supercharger", "Bosch Performance Speed", 1000, "Autonomia infinita e tecnologia tedesca per i lunghi viaggi senza limiti."},
	{"Cube Kathmandu Hybrid", "Bosch Performance CX", 750, "Versatilità pura per il trekking, dalle strade cittadine ai sentieri sterrati."},
	{"Scott Patron eRIDE", "Bosch Performance CX", 750, "Integrazione perfetta e geometria avanzata per un controllo totale."},
	{"Brompton Electric P Line", "Brompton 250W", 300, "La leggendaria bici pieghevole, ora potenziata per muoversi agilmente nel traffico."},
	{"Gazelle Ultimate C380", "Bosch Performance Line", 500, "Eleganza olandese unita alla trasmissione a variazione continua Enviolo."},
	{"Kalkhoff Agattu 3.B", "Bosch Active Line", 500, "Stabilità e affidabilità per chi cerca una guida sicura e confortevole."},
	{"Bianchi T-Tronik Rebel", "Bianchi Motor 85Nm", 630, "Il mito Bianchi incontra l'elettrico in una MTB pronta a tutto."},
	{"Haibike AllMtn 7", "Yamaha PW-X3", 720, "Potenza giapponese e design tedesco per prestazioni off-road assolute."},
	{"Giant Explore E+", "SyncDrive Pro", 625, "Scopri nuovi orizzonti con questa e-bike da trekking versatile e robusta."},
	{"Moustache Samedi 27", "Bosch Performance Line", 625, "Il sorriso ai piedi del castello, una guida naturale e intuitiva."},
}

// catalogSection assigns a contiguous range of product numbers to a category
type catalogSection struct {
	category domain.Category
	first    int
	last     int
	motor    string
	battery  int
}

var catalogSections = []catalogSection{
	{domain.CategoryEMTB, 1, 15, "Bosch Performance CX", 750},
	{domain.CategoryECityUrban, 16, 35, "Bosch Active Line", 500},
	{domain.CategoryTrekking, 36, 50, "Bosch Performance Speed", 625},
	{domain.CategoryAccessories, 51, 75, "N/A", 0},
}

// DemoCatalogSize is the number of products DemoCatalog returns
const DemoCatalogSize = 75

// DemoCatalog returns the 75 demo products: 15 e-MTB, 20 city, 15 trekking
// and 25 accessories. The first five are featured and every eighth is a
// bestseller.
func DemoCatalog() []*domain.Product {
	products := make([]*domain.Product, 0, DemoCatalogSize)

	for _, section := range catalogSections {
		accessory := section.category == domain.CategoryAccessories

		for i := section.first; i <= section.last; i++ {
			model := bikeModels[(i-1)%len(bikeModels)]

			p := &domain.Product{
				Category:      section.category,
				MainImage:     fmt.Sprintf("/img/%d.jpg", i),
				GalleryImages: []string{},
				StockQuantity: 12,
				IsBestseller:  i%8 == 0,
				IsFeatured:    i <= 5,
				Status:        domain.ProductStatusActive,
			}

			if accessory {
				p.Name = fmt.Sprintf("Accessorio %d", i)
				p.Brand = "Cicli Volante"
				p.Price = decimal.NewFromInt(int64(45 + i))
				p.Motor = "N/A"
				p.ShortDescription = "Accessorio di alta qualità per la tua sicurezza e manutenzione."
				p.FullDescription = "Questo accessorio premium è stato selezionato da Cicli Volante per garantire la massima affidabilità ai nostri clienti. Realizzato con materiali resistenti e design italiano."
				p.DetailedDescription = "Materiali: Acciaio temperato / Polimeri alta densità\nSicurezza: Certificazione Quad Lock\nDesign: Ergonomico professionale"
			} else {
				p.Name = fmt.Sprintf("%s Modello %d", model.name, i)
				p.Brand = strings.Fields(model.name)[0]
				p.Price = decimal.NewFromInt(int64(2450 + i*120))
				p.Motor = section.motor
				p.BatteryWh = section.battery
				p.AutonomyKm = 90 + i%30
				p.ShortDescription = model.desc
				p.FullDescription = fmt.Sprintf(
					"Il modello %d della serie %s rappresenta il top della gamma %s. Dotato di tecnologia all'avanguardia Bosch e trasmissione Shimano XT per un'esperienza di guida senza pari.",
					i, model.name, section.category,
				)
				p.DetailedDescription = fmt.Sprintf(
					"Motore: %s\nBatteria: %dWh\nTrasmissione: Shimano XT Shadow Plus\nSicurezza: Quad Lock integrato\nTelaio: Alluminio aeronautico / Carbonio",
					section.motor, section.battery,
				)
			}
			p.Slug = fmt.Sprintf("%s-%d", domain.Slugify(p.Name), i)
			p.ApplyDefaults()

			products = append(products, p)
		}
	}

	return products
}
