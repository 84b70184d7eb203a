package segment

// ade20k lists the class names of the 100 class ADE20K subset. Id i+1 names
// ade20k[i]; id 0 is background.
var ade20k = []string{
	"bed", "windowpane", "cabinet", "person", "door",
	"table", "curtain", "chair", "car", "painting",
	"sofa", "shelf", "mirror", "armchair", "seat",
	"fence", "desk", "wardrobe", "lamp", "bathtub",
	"railing", "cushion", "box", "column", "signboard",
	"chest of drawers", "counter", "sink", "fireplace", "refrigerator",
	"stairs", "case", "pool table", "pillow", "screen door",
	"bookcase", "coffee table", "toilet", "flower", "book",
	"bench", "countertop", "stove", "palm", "kitchen island",
	"computer", "swivel chair", "boat", "arcade machine", "bus",
	"towel", "light", "truck", "chandelier", "awning",
	"streetlight", "booth", "television receiver", "airplane", "apparel",
	"pole", "bannister", "ottoman", "bottle", "van",
	"ship", "fountain", "washer", "plaything", "stool",
	"barrel", "basket", "bag", "minibike", "oven",
	"ball", "food", "step", "trade name", "microwave",
	"pot", "animal", "bicycle", "dishwasher", "screen",
	"sculpture", "hood", "sconce", "vase", "traffic light",
	"tray", "ashcan", "fan", "plate", "monitor",
	"bulletin board", "radiator", "glass", "clock", "flag",
}

// ADE20K returns the id to name table for the ADE20K subset.
func ADE20K() map[int]string {
	m := make(map[int]string, len(ade20k))
	for i, n := range ade20k {
		m[i+1] = n
	}
	return m
}
