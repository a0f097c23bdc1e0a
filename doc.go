// Package stylist ranks outfits from a catalog against a free-text style
// request and optional season, occasion and color filters.
//
// Season and occasion are soft filters: one that matches nothing is dropped,
// and if together they match nothing the whole catalog is ranked. Color is a
// hard filter applied after scoring, with the same fallback.
//
//	client, _ := stylist.New(ctx, stylist.WithCatalogCSV("data/outfits.csv"))
//	hits, _ := client.Recommend("light linen for a beach wedding").
//	    Season("summer").
//	    Color("white").
//	    TopK(5).
//	    Do(ctx)
//
// Text is scored lexically (TF-IDF) by default. WithEmbedder switches to
// dense cosine similarity over embeddings.
package stylist
