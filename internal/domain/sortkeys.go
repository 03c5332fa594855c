package domain

// Sort keys used by the sorting package. Timestamps are returned untyped so
// records decoded from other sources can expose whatever shape they carry.

func (p *Place) SortName() string  { return p.Name }
func (p *Place) SortCreated() any  { return p.CreatedAt }
func (p *Place) SortModified() any { return nil }

func (c *Container) SortName() string { return c.Name }
func (c *Container) SortCreated() any { return c.CreatedAt }

func (c *Container) SortModified() any {
	if c.LastAccessed == nil {
		return nil
	}
	return *c.LastAccessed
}

func (i *Item) SortName() string  { return i.Name }
func (i *Item) SortCreated() any  { return i.CreatedAt }
func (i *Item) SortModified() any { return nil }

func (g *Group) SortName() string  { return g.Name }
func (g *Group) SortCreated() any  { return g.CreatedAt }
func (g *Group) SortModified() any { return nil }
