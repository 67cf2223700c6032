package kickstart

// conditionalState tracks nested %if/%ifarch blocks during one parse call.
// The activity stack always keeps a sentinel true at the bottom; a parallel
// stack remembers whether each open branch was taken, so %else can flip only
// the innermost level.
type conditionalState struct {
	stack       []bool
	branchTaken []bool
}

func newConditionalState() *conditionalState {
	return &conditionalState{stack: []bool{true}}
}

// active is the AND over the whole stack.
func (c *conditionalState) active() bool {
	for _, v := range c.stack {
		if !v {
			return false
		}
	}
	return true
}

func (c *conditionalState) pushIfArch(wanted []string, actual string) {
	cond := false
	for _, w := range wanted {
		if w == actual {
			cond = true
			break
		}
	}
	c.push(cond)
}

func (c *conditionalState) pushIf(value int64) {
	c.push(value != 0)
}

func (c *conditionalState) push(cond bool) {
	c.stack = append(c.stack, cond)
	c.branchTaken = append(c.branchTaken, cond)
}

// elseBranch flips only the top of the stack, based on whether the matching
// %if branch was taken.
func (c *conditionalState) elseBranch() {
	if len(c.branchTaken) == 0 || len(c.stack) == 0 {
		return
	}
	c.stack[len(c.stack)-1] = !c.branchTaken[len(c.branchTaken)-1]
}

// endif pops one level. The bottom sentinel is restored if a stray %endif
// would empty the stack.
func (c *conditionalState) endif() {
	if len(c.stack) > 0 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	if len(c.branchTaken) > 0 {
		c.branchTaken = c.branchTaken[:len(c.branchTaken)-1]
	}
	if len(c.stack) == 0 {
		c.stack = []bool{true}
	}
}
