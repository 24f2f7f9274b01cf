package catalog

// DemoResult is one entry of the demonstration dataset.
type DemoResult struct {
	Record
	Confidence int
}

// DemoDataset is the fixed result set shown when real analysis fails.
type DemoDataset struct {
	results []DemoResult
}

// Results returns a copy of the dataset entries.
func (d DemoDataset) Results() []DemoResult {
	out := make([]DemoResult, len(d.results))
	for i, r := range d.results {
		out[i] = DemoResult{Record: cloneRecord(r.Record), Confidence: r.Confidence}
	}
	return out
}

func defaultDemo(c *Catalog) DemoDataset {
	r, ok := c.ByID(GusanoCogollero)
	if !ok {
		r = c.withName(string(GusanoCogollero))
	}
	return DemoDataset{results: []DemoResult{{Record: r, Confidence: 87}}}
}
