package categorize

// Category represents a taxonomy entry with metadata.
type Category struct {
	Name        string
	Description string
	Keywords    []string // Fallback lookup terms for this category
}

// CategoryOther is the reserved bucket for content matching nothing else.
const CategoryOther = "Other"

// TaxonomyVersion participates in classification cache keys so cached
// results do not outlive taxonomy edits.
const TaxonomyVersion = "v1"

// DefaultTaxonomy returns the standard category set.
func DefaultTaxonomy() []Category {
	return []Category{
		{
			Name:        "Frontend",
			Description: "Browser-side development: frameworks, CSS, UI engineering",
			Keywords:    []string{"react", "vue", "angular", "svelte", "css", "html", "frontend", "browser", "ui", "webpack", "vite"},
		},
		{
			Name:        "Backend",
			Description: "Server-side development: APIs, databases, distributed systems",
			Keywords:    []string{"api", "database", "sql", "server", "backend", "microservice", "grpc", "rest", "postgres", "redis", "queue"},
		},
		{
			Name:        "Mobile",
			Description: "iOS, Android, and cross-platform app development",
			Keywords:    []string{"ios", "android", "swift", "kotlin", "flutter", "react native", "mobile", "app store"},
		},
		{
			Name:        "AI/ML",
			Description: "Machine learning, LLMs, and data science",
			Keywords:    []string{"machine learning", "llm", "neural", "model", "ai", "gpt", "transformer", "training", "inference", "embedding"},
		},
		{
			Name:        "DevOps",
			Description: "Infrastructure, CI/CD, observability, and operations",
			Keywords:    []string{"kubernetes", "docker", "terraform", "ci/cd", "deployment", "devops", "observability", "monitoring", "sre", "cloud"},
		},
		{
			Name:        CategoryOther,
			Description: "Content that fits no other category",
			Keywords:    nil,
		},
	}
}

// Names returns just the category names.
func Names(categories []Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	return names
}
