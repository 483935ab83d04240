package sema

import (
	"wdlc/internal/docgraph"
	"wdlc/internal/types"
)

// AnalyzeDocuments runs name resolution and type checking over every
// document in order — leaves first, as produced by docgraph.Graph.Analyze
// — appending diagnostics to each Document.Diags. A document's struct/enum
// table is built once, merging in every resolved import's table (already
// computed, since an import always precedes its importer in a topological
// order), and cached so a later document that imports this one can look it
// up in turn.
func AnalyzeDocuments(order []*docgraph.Document, in *types.Interner, registry *Registry) {
	cache := make(map[string]NamedTypes, len(order))
	for _, doc := range order {
		imported := make(NamedTypes)
		for _, edge := range doc.Imports {
			if edge.Target == nil {
				continue
			}
			source, ok := cache[edge.Target.URI]
			if !ok {
				continue
			}
			for name, id := range importedNamedTypes(edge, source) {
				imported[name] = id
			}
		}
		named := registerDocumentTypes(doc, in, imported)
		cache[doc.URI] = named

		ctx := &Context{Doc: doc, In: in, Named: named, AllNamed: cache}
		registry.Run(ctx)
	}
}
