package locale

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFormatDate(t *testing.T) {
	Convey("Given ISO dates", t, func() {
		cases := map[string]string{
			"1452-04-15":            "15 de abril de 1452",
			"1452-04-15T00:00:00Z":  "15 de abril de 1452",
			"+1881-10-25T00:00:00Z": "25 de octubre de 1881",
			"1973-04-08":            "8 de abril de 1973",
			"-0500-01-01T00:00:00Z": "1 de enero de 500 a. C.",
		}
		for in, want := range cases {
			got, ok := FormatDate(in)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, want)
		}

		for _, bad := range []string{"", "1452", "1452-13-01", "abc-01-01", "1452-04-00"} {
			_, ok := FormatDate(bad)
			So(ok, ShouldBeFalse)
		}
	})
}

func TestLifespans(t *testing.T) {
	Convey("Given birth and death dates", t, func() {
		Convey("Detail lifespan with both dates", func() {
			So(DetailLifespan("1452-04-15", "1519-05-02"), ShouldEqual, "15 de abril de 1452 - 2 de mayo de 1519")
		})
		Convey("Detail lifespan with only a birth date", func() {
			So(DetailLifespan("1452-04-15", ""), ShouldEqual, "Nacido/a: 15 de abril de 1452")
		})
		Convey("Detail lifespan with neither or only death", func() {
			So(DetailLifespan("", ""), ShouldEqual, UnknownLifespan)
			So(DetailLifespan("", "1519-05-02"), ShouldEqual, UnknownLifespan)
		})
		Convey("Detail lifespan keeps unreadable values", func() {
			So(DetailLifespan("siglo XV", ""), ShouldEqual, "Nacido/a: siglo XV")
		})
		Convey("Popup lifespan", func() {
			So(PopupLifespan("1452-04-15", "1519-05-02"), ShouldEqual, "(15 de abril de 1452 - 2 de mayo de 1519)")
			So(PopupLifespan("1452-04-15", ""), ShouldEqual, "(Nacido: 15 de abril de 1452)")
			So(PopupLifespan("", "1519-05-02"), ShouldBeEmpty)
		})
	})
}

func TestCaption(t *testing.T) {
	Convey("Given image availability", t, func() {
		So(Caption("La Gioconda", "a.jpg", "p.jpg"), ShouldEqual, "La Gioconda")
		So(Caption("", "a.jpg", ""), ShouldEqual, FeaturedWork)
		So(Caption("", "a.jpg", "p.jpg"), ShouldEqual, FeaturedWork)
		So(Caption("", "", "p.jpg"), ShouldEqual, ArtistPortrait)
		So(Caption("", "", ""), ShouldEqual, NoVisualInfo)
	})
}

func TestOr(t *testing.T) {
	Convey("Or falls back on blank values", t, func() {
		So(Or("", UnknownArtist), ShouldEqual, UnknownArtist)
		So(Or("  ", UnknownArtist), ShouldEqual, UnknownArtist)
		So(Or("Goya", UnknownArtist), ShouldEqual, "Goya")
	})
}
