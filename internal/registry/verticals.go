// Package registry loads the industry vertical definitions used by the
// classify stage, with compiled-in defaults and optional YAML override.
package registry

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/prospect-cli/internal/model"
)

// defaultVerticals is the built-in vertical set. A config file replaces the
// whole list, not individual entries.
var defaultVerticals = []model.VerticalDef{
	{
		Name:        "healthcare",
		Description: "Healthcare, pharmaceuticals, medical devices, health services",
		Keywords:    []string{"hospital", "health", "medical", "pharma", "biotech", "healthcare", "clinic", "therapeutic", "diagnostics", "patient", "medicine"},
	},
	{
		Name:        "finance",
		Description: "Banking, insurance, investment, fintech",
		Keywords:    []string{"bank", "insurance", "investment", "financial", "fintech", "capital", "asset management", "wealth", "trading", "securities"},
	},
	{
		Name:        "retail",
		Description: "Retail, e-commerce, consumer goods",
		Keywords:    []string{"retail", "store", "ecommerce", "e-commerce", "consumer", "shop", "marketplace", "wholesale", "department store"},
	},
	{
		Name:        "manufacturing",
		Description: "Manufacturing, industrial, production",
		Keywords:    []string{"manufacturing", "factory", "industrial", "production", "assembly", "machinery", "equipment", "fabrication"},
	},
	{
		Name:        "technology",
		Description: "Software, IT services, tech products",
		Keywords:    []string{"software", "saas", "cloud", "tech", "digital", "platform", "app", "data", "analytics", "ai", "machine learning", "cybersecurity"},
	},
	{
		Name:        "energy",
		Description: "Oil & gas, utilities, renewable energy",
		Keywords:    []string{"energy", "oil", "gas", "utility", "power", "renewable", "solar", "wind", "electric", "petroleum"},
	},
	{
		Name:        "telecommunications",
		Description: "Telecom, network services",
		Keywords:    []string{"telecom", "wireless", "mobile", "network", "broadband", "internet", "cable", "satellite", "5g", "communications"},
	},
	{
		Name:        "media_entertainment",
		Description: "Media, entertainment, gaming, publishing",
		Keywords:    []string{"media", "entertainment", "gaming", "streaming", "publishing", "broadcast", "film", "music", "news", "advertising"},
	},
	{
		Name:        "transportation",
		Description: "Logistics, shipping, airlines, automotive",
		Keywords:    []string{"transport", "logistics", "shipping", "airline", "automotive", "freight", "delivery", "trucking", "rail", "aviation"},
	},
	{
		Name:        "real_estate",
		Description: "Real estate, property management",
		Keywords:    []string{"real estate", "property", "realty", "housing", "commercial property", "residential", "development", "leasing"},
	},
	{
		Name:        "professional_services",
		Description: "Consulting, legal, accounting",
		Keywords:    []string{"consulting", "advisory", "legal", "accounting", "audit", "law firm", "professional services", "management consulting"},
	},
	{
		Name:        "education",
		Description: "Education, EdTech, training",
		Keywords:    []string{"education", "university", "school", "learning", "training", "academic", "edtech", "college", "curriculum"},
	},
	{
		Name:        "government",
		Description: "Government, public sector",
		Keywords:    []string{"government", "federal", "state", "municipal", "public sector", "agency", "defense", "military"},
	},
	{
		Name:        "hospitality",
		Description: "Hotels, restaurants, travel",
		Keywords:    []string{"hotel", "hospitality", "restaurant", "travel", "tourism", "resort", "lodging", "food service", "cruise"},
	},
	{
		Name:        "agriculture",
		Description: "Agriculture, food production",
		Keywords:    []string{"agriculture", "farming", "agri", "crop", "livestock", "agtech", "agricultural"},
	},
	{
		Name:        "construction",
		Description: "Construction, engineering",
		Keywords:    []string{"construction", "building", "engineering", "infrastructure", "contractor", "architecture"},
	},
	{
		Name:        "nonprofit",
		Description: "Non-profit organizations",
		Keywords:    []string{"nonprofit", "non-profit", "charity", "foundation", "ngo", "association"},
	},
	{
		Name:        "other",
		Description: "Other industries",
	},
}

// Default returns the compiled-in vertical registry.
func Default() *model.VerticalRegistry {
	return model.NewVerticalRegistry(defaultVerticals)
}

// LoadVerticals reads a vertical registry from a YAML file. The file has a
// top-level "verticals" key holding a list of definitions.
func LoadVerticals(path string) (*model.VerticalRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read verticals %s", path)
	}

	var wrapper struct {
		Verticals []model.VerticalDef `yaml:"verticals"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "registry: parse verticals")
	}
	if len(wrapper.Verticals) == 0 {
		return nil, eris.Errorf("registry: no verticals defined in %s", path)
	}

	return model.NewVerticalRegistry(wrapper.Verticals), nil
}
