package fonts

import "testing"

func TestLoadBuiltinFonts(t *testing.T) {
	for _, name := range []string{"embed:Go-Regular.ttf", "Go-Bold.ttf", " embed:Go-Bold-Italic.ttf"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s 数据为空", name)
		}
	}
	if _, err := Load("embed:Inter-Regular.ttf"); err == nil {
		t.Fatalf("未知字体应报错")
	}
	if len(Names()) != 5 {
		t.Fatalf("期望 5 个内置字体，实际 %d", len(Names()))
	}
}
