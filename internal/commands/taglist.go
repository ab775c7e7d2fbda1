package commands

// TaglistSelectCommand searches for the selected tag.
type TaglistSelectCommand struct {
	meta
	Tag string
}

func (c *TaglistSelectCommand) Apply(ctx Context) error {
	tag := c.Tag
	if tag == "" {
		tv, ok := ctx.CurrentView().(TaglistView)
		if !ok {
			return nil
		}
		tag = tv.SelectedTag()
	}
	if tag == "" {
		return nil
	}
	search := &SearchCommand{Query: "tag:" + tag}
	return search.Apply(ctx)
}
