package kiln

import "testing"

func BenchmarkRegister(b *testing.B) {
	for b.Loop() {
		newTestRegistry(b)
	}
}

func BenchmarkParseTypeName(b *testing.B) {
	for b.Loop() {
		ParseTypeName("object [ ] ; Shape")
	}
}

func BenchmarkCreateDefinedObject_Instance(b *testing.B) {
	f := newTestFactory(b)
	mustSave(b, f, "w1", mustDefine(b, "Widget", p("int", Scalar("5")), p("string", Scalar("hi"))))
	mustSave(b, f, "b1", mustDefine(b, "Box", p("object", Scalar("w1"))))

	for b.Loop() {
		f.CreateDefinedObject("b1")
	}
}

func BenchmarkCreateDefinedObject_Factory(b *testing.B) {
	f := newTestFactory(b)
	mustSave(b, f, "w1", withLifetime(b, mustDefine(b, "Widget", p("int", Scalar("5")), p("string", Scalar("hi"))), LifetimeFactory))

	for b.Loop() {
		f.CreateDefinedObject("w1")
	}
}

func BenchmarkCreateDefinedObject_Array(b *testing.B) {
	f := newTestFactory(b)
	mustSave(b, f, "s1", mustDefine(b, "Square", p("double", Scalar("2"))))
	mustSave(b, f, "c1", mustDefine(b, "Canvas", p("object[];Shape", Array("s1", "s1", "s1"))))

	for b.Loop() {
		f.CreateDefinedObject("c1")
	}
}

func BenchmarkCreateObject(b *testing.B) {
	r := newTestRegistry(b)
	for b.Loop() {
		r.CreateObject("Widget", WithArgs(int32(5), "hi"))
	}
}
