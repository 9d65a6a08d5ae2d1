package models

// genreNames covers the curriculum genres. Imported files may carry others.
var genreNames = map[string]string{
	"JP01": "漢字・語彙", "JP02": "文法・言葉のきまり", "JP03": "物語文読解",
	"JP04": "説明文・論説文読解", "JP05": "随筆文読解", "JP06": "詩・韻文",
	"JP07": "記述問題", "JP08": "知識・文学史",

	"MA01": "計算", "MA02": "数の性質", "MA03": "割合・比", "MA04": "速さ",
	"MA05": "文章題（その他）", "MA06": "平面図形", "MA07": "立体図形",
	"MA08": "場合の数・確率", "MA09": "グラフ・表", "MA10": "特殊算",

	"SC01": "力・運動", "SC02": "電気", "SC03": "光・音・熱", "SC04": "物質の性質",
	"SC05": "水溶液", "SC06": "燃焼・化学変化", "SC07": "植物", "SC08": "動物",
	"SC09": "人体", "SC10": "天体", "SC11": "気象", "SC12": "地学",

	"SO01": "日本地理（国土・自然）", "SO02": "日本地理（産業）", "SO03": "世界地理",
	"SO04": "歴史（古代〜平安）", "SO05": "歴史（鎌倉〜室町）", "SO06": "歴史（安土桃山〜江戸）",
	"SO07": "歴史（明治〜現代）", "SO08": "公民（政治・憲法）", "SO09": "公民（経済・国際）",
	"SO10": "時事問題",
}

// GenreName looks up a curriculum genre. ok is false for unknown ids.
func GenreName(genreID string) (name string, ok bool) {
	name, ok = genreNames[genreID]
	return name, ok
}
