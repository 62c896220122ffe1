// Package knowledge holds the static investment knowledge corpus used for retrieval.
//
// The corpus is fixed at build time. Document IDs equal their position in the
// slice, and that position is the row index in the embedding matrix and the
// vector index. Reordering or editing items invalidates any persisted index
// built from a previous version.
package knowledge

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pitchlens/pitchlens/internal/domain"
)

// Corpus is the ordered, immutable knowledge document catalog.
type Corpus struct {
	items []domain.Document
}

// NewCorpus returns the built-in investment knowledge corpus.
func NewCorpus() *Corpus {
	return &Corpus{items: investmentKnowledge}
}

// Items returns the ordered document sequence. Callers must not mutate it.
func (c *Corpus) Items() []domain.Document {
	return c.items
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return len(c.items)
}

// Contents returns the document bodies in corpus order, the embedding input.
func (c *Corpus) Contents() []string {
	texts := make([]string, len(c.items))
	for i, item := range c.items {
		texts[i] = item.Content
	}
	return texts
}

// Digest returns a SHA-256 hex digest over the concatenated document contents.
// Used to detect equal-count corpus edits that the length fingerprint misses.
func (c *Corpus) Digest() string {
	h := sha256.New()
	for _, item := range c.items {
		h.Write([]byte(item.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Topics returns the introspection listing of all documents.
func (c *Corpus) Topics() []domain.TopicInfo {
	topics := make([]domain.TopicInfo, len(c.items))
	for i, item := range c.items {
		topics[i] = domain.TopicInfo{
			ID:       item.ID,
			Topic:    item.Topic,
			Category: item.Category,
			Tags:     item.Tags,
		}
	}
	return topics
}

var investmentKnowledge = []domain.Document{
	{
		ID:       0,
		Topic:    "startup_valuation_methods",
		Category: "valuation",
		Content: "Startup valuation methods include revenue multiples (5-15x ARR for SaaS, " +
			"2-5x for e-commerce), Discounted Cash Flow with high discount rates (15-25%), " +
			"Comparable company analysis using public/private comps, Risk-adjusted NPV for " +
			"early-stage ventures. Pre-revenue startups valued on TAM, team pedigree, and " +
			"competitive moats. Series A typically valued at 10-20x ARR with strong growth.",
		Tags: []string{"valuation", "metrics", "series_a"},
	},
	{
		ID:       1,
		Topic:    "market_sizing_tam_sam_som",
		Category: "market_analysis",
		Content: "Market sizing framework: Total Addressable Market (TAM) - global demand for " +
			"solution category, Serviceable Addressable Market (SAM) - realistic market segment " +
			"company can serve with current business model, Serviceable Obtainable Market (SOM) - " +
			"achievable market share based on competitive positioning. Bottom-up analysis " +
			"preferred: unit economics × addressable customers × market penetration rates.",
		Tags: []string{"market_sizing", "tam", "framework"},
	},
	{
		ID:       2,
		Topic:    "product_market_fit_indicators",
		Category: "traction",
		Content: "Product-Market Fit signals: >40% users 'very disappointed' without product " +
			"(Sean Ellis test), organic growth >20% month-over-month, retention cohorts " +
			"flattening after month 6, Net Promoter Score >50, word-of-mouth growth coefficient " +
			">0.15. Qualitative indicators: customers pulling product into organization, " +
			"unsolicited feature requests, competitive win rates >60%, sales cycle compression.",
		Tags: []string{"pmf", "retention", "growth", "early_stage"},
	},
	{
		ID:       3,
		Topic:    "saas_key_metrics_benchmarks",
		Category: "metrics",
		Content: "SaaS metrics benchmarks: LTV:CAC ratio >3:1 (excellent >5:1), CAC payback " +
			"period <12 months (best <6 months), Monthly churn rate <5% (SMB) or <2% " +
			"(Enterprise), Net Revenue Retention >110% (best-in-class >130%), Gross margin >70% " +
			"(SaaS standard >80%), Annual Contract Value growth, Magic Number >1.0 for " +
			"efficient growth.",
		Tags: []string{"saas", "metrics", "benchmarks", "ltv_cac"},
	},
	{
		ID:       4,
		Topic:    "early_stage_funding_milestones",
		Category: "funding",
		Content: "Early-stage funding milestones: Pre-seed ($100K-$1M) - MVP and initial user " +
			"feedback, Seed ($500K-$5M) - product-market fit signals and early traction, " +
			"Series A ($2M-$15M) - proven PMF with $1M+ ARR and scalable go-to-market. Each " +
			"round should provide 18-24 months runway. Key metrics progression: Pre-seed " +
			"focuses on engagement, Seed on retention/growth, Series A on unit economics and " +
			"scalability.",
		Tags: []string{"funding", "milestones", "early_stage", "seed", "series_a"},
	},
	{
		ID:       5,
		Topic:    "team_assessment_framework",
		Category: "team",
		Content: "Founder assessment criteria: Domain expertise and founder-market fit, " +
			"Previous startup experience (especially successful exits), Technical/business " +
			"complementarity, Ability to attract top talent, Leadership under pressure, " +
			"Coachability and learning agility, Fair equity distribution, Strong advisory " +
			"board. Red flags: founder conflicts, unrealistic expectations, poor communication " +
			"skills, inability to hire senior talent.",
		Tags: []string{"founders", "team", "assessment", "red_flags"},
	},
	{
		ID:       6,
		Topic:    "competitive_analysis_moats",
		Category: "strategy",
		Content: "Competitive moats for startups: Network effects (value increases with users - " +
			"strongest moat), Switching costs (data/integration lock-in), Economies of scale, " +
			"Proprietary data/algorithms, Brand recognition, Regulatory barriers, Exclusive " +
			"partnerships. Evaluate moat timeline and defensibility. Technology alone rarely " +
			"provides lasting advantage without network effects or data moats.",
		Tags: []string{"competitive_advantage", "moats", "defensibility", "network_effects"},
	},
	{
		ID:       7,
		Topic:    "unit_economics_analysis",
		Category: "financials",
		Content: "Unit economics fundamentals: Customer Acquisition Cost (CAC) including " +
			"fully-loaded sales/marketing costs, Customer Lifetime Value (LTV) with realistic " +
			"churn assumptions, Contribution margin after variable costs, Payback period " +
			"calculation, Cohort-based analysis for accuracy. Key ratios: LTV:CAC >3:1, " +
			"Payback <12 months, positive unit economics at scale with improving trends.",
		Tags: []string{"unit_economics", "cac", "ltv", "cohort_analysis"},
	},
	{
		ID:       8,
		Topic:    "growth_strategy_channels",
		Category: "growth",
		Content: "Growth channel evaluation: Product-led growth (PLG) for viral/self-serve " +
			"products, Sales-led growth for enterprise/complex products, Marketing-led growth " +
			"for consumer/SMB markets. Channel metrics: Customer acquisition cost by channel, " +
			"conversion rates, time to value, retention by acquisition source. Successful " +
			"startups typically master 1-2 primary channels before expanding.",
		Tags: []string{"growth_strategy", "plg", "sales_led", "channels"},
	},
	{
		ID:       9,
		Topic:    "investment_red_flags",
		Category: "risks",
		Content: "Major investment red flags: Unrealistic financial projections without " +
			"supporting data, weak founding team lacking domain expertise, unclear go-to-market " +
			"strategy, poor unit economics with no path to profitability, highly competitive " +
			"market with no differentiation, legal/IP issues, high customer concentration " +
			"(>50% revenue from single customer), excessive burn rate without proportional " +
			"growth.",
		Tags: []string{"red_flags", "risks", "due_diligence", "warning_signs"},
	},
}
