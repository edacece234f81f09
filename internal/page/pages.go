package page

import "github.com/starford/graphblog/internal/models"

const (
	highlightCSS = "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/10.6.0/styles/default.min.css"
	highlightJS  = "https://cdnjs.cloudflare.com/ajax/libs/highlight.js/10.6.0/highlight.min.js"
)

// GraphVariable is the script global the front page graph reads its data from.
const GraphVariable = "graph_data"

// IndexPage is the front page: the graph visualization fed with g, and a
// plain list of slugs for visitors without JavaScript.
func IndexPage(g *models.Graph, slugs []string) Page {
	return Page{
		Head: []Block{
			Icons{},
			Script{Path: "node_modules/force-graph/dist/force-graph.min.js"},
			Stylesheet{Path: "styles/default.css"},
			Script{Path: "node_modules/animejs/lib/anime.min.js"},
			Stylesheet{Path: "styles/anime.css"},
			InlineData{Name: GraphVariable, Value: g},
		},
		Body: []Block{
			Division{Class: "logo-front_page", Children: []Block{Logo{}}},
			Division{ID: "graph"},
			Division{ID: "NoJS", Class: "posts-index", Children: []Block{Index{Slugs: slugs}}},
			Script{Path: "js/graph.js"},
			Script{Path: "js/anime.js"},
		},
	}
}

// DocumentPage renders a single document with its metadata tags and code
// highlighting assets.
func DocumentPage(doc *models.RenderedDocument) Page {
	return Page{
		Head: []Block{
			Icons{},
			Meta{Metadata: doc.Metadata},
			Stylesheet{Path: "styles/md.css"},
			Script{Path: "node_modules/animejs/lib/anime.min.js"},
			Stylesheet{Path: "styles/anime.css"},
			ExternalAsset{URL: highlightCSS, Kind: CSS},
			ExternalAsset{URL: highlightJS, Kind: JS},
		},
		Body: []Block{
			Division{Class: "logo-blog_page", Children: []Block{Logo{}}},
			Division{Class: "markdown-body", Children: []Block{Markdown{HTML: doc.HTML}}},
			Script{Path: "js/anime.js"},
			Script{Path: "js/syntax.js"},
		},
	}
}
